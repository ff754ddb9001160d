package main

import (
	"os"

	"github.com/TykTechnologies/certexpiry/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
