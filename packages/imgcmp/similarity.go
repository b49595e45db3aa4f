package imgcmp

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/orisano/pixelmatch"
)

// Mode selects the similarity algorithm.
type Mode string

const (
	// ModePixel scores the share of pixels pixelmatch counts as equal.
	// Anti-aliased pixels are not counted as different.
	ModePixel Mode = "pixel"
	// ModeHistogram scores the intersection of the two luma histograms.
	ModeHistogram Mode = "histogram"
)

// PixelThreshold is the pixelmatch colour distance, from 0 to 1, below which
// two pixels are equal.
const PixelThreshold = 0.1

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePixel, ModeHistogram:
		return m, nil
	case "":
		return ModePixel, nil
	}
	return "", fmt.Errorf("unknown comparison mode %q", s)
}

// Load decodes a PNG, JPEG or GIF file.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// Similarity scores a against b from 0 (nothing alike) to 100 (identical).
func Similarity(a, b image.Image, mode Mode) (float64, error) {
	switch mode {
	case ModePixel, "":
		return pixelSimilarity(a, b)
	case ModeHistogram:
		return histogramSimilarity(a, b), nil
	}
	return 0, fmt.Errorf("unknown comparison mode %q", mode)
}

func channels(img image.Image, x, y int) [4]int32 {
	r, g, b, a := img.At(x, y).RGBA()
	return [4]int32{int32(r >> 8), int32(g >> 8), int32(b >> 8), int32(a >> 8)}
}

func pixelSimilarity(a, b image.Image) (float64, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return 0, nil
	}
	total := ab.Dx() * ab.Dy()
	if total == 0 {
		return 100, nil
	}
	diff, err := pixelmatch.MatchPixel(a, b, pixelmatch.Threshold(PixelThreshold))
	if err != nil {
		return 0, fmt.Errorf("matching pixels: %w", err)
	}
	return 100 * float64(total-diff) / float64(total), nil
}

func lumaHistogram(img image.Image) ([256]float64, int) {
	var hist [256]float64
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := channels(img, x, y)
			// ITU-R BT.601 luma
			l := (299*c[0] + 587*c[1] + 114*c[2]) / 1000
			hist[l]++
		}
	}
	return hist, bounds.Dx() * bounds.Dy()
}

func histogramSimilarity(a, b image.Image) float64 {
	ha, na := lumaHistogram(a)
	hb, nb := lumaHistogram(b)
	if na == 0 || nb == 0 {
		if na == nb {
			return 100
		}
		return 0
	}
	var sum float64
	for i := range ha {
		pa, pb := ha[i]/float64(na), hb[i]/float64(nb)
		if pa < pb {
			sum += pa
		} else {
			sum += pb
		}
	}
	return 100 * sum
}
