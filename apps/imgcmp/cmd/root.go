package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/pagexpect/packages/imgcmp"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	compareFlag   bool
	pixelFlag     bool
	histogramFlag bool
	logLevelFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "imgcmp --compare <file1> <file2> [--pixel|--histogram]",
	Short: "Score the similarity of two images",
	Long: `imgcmp compares two PNG, JPEG or GIF images and prints a similarity
score between 0 and 100. A low score is not an error; the exit code is
non-zero only when the images cannot be read or compared.

Examples:
  imgcmp --compare actual.png baseline.png
  imgcmp --compare actual.png baseline.png --histogram`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         compareCommand,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&compareFlag, "compare", false, "Compare the two images given as arguments")
	rootCmd.Flags().BoolVar(&pixelFlag, "pixel", false, "Score the share of matching pixels (default)")
	rootCmd.Flags().BoolVar(&histogramFlag, "histogram", false, "Score the overlap of luminance histograms")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.MarkFlagsMutuallyExclusive("pixel", "histogram")

	rootCmd.AddCommand(versionCmd)
}

func compareCommand(cmd *cobra.Command, args []string) error {
	if !compareFlag {
		return cmd.Help()
	}
	if len(args) != 2 {
		return fmt.Errorf("--compare needs exactly two files, got %d", len(args))
	}

	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	lvl, err := logrus.ParseLevel(logLevelFlag)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	log.SetLevel(lvl)

	mode := imgcmp.ModePixel
	if histogramFlag {
		mode = imgcmp.ModeHistogram
	}

	a, err := imgcmp.Load(args[0])
	if err != nil {
		return err
	}
	b, err := imgcmp.Load(args[1])
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"file1": args[0],
		"file2": args[1],
		"mode":  mode,
	}).Debug("comparing")

	score, err := imgcmp.Similarity(a, b, mode)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", score)
	return nil
}
