package main

import "github.com/abdul-hamid-achik/pagexpect/apps/imgcmp/cmd"

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cmd.Execute(version, buildTime)
}
