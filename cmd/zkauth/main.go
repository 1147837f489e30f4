// Command zkauth runs the Schnorr identification protocol on 128-bit parameters, either as an
// interactive walkthrough of the five protocol screens or non-interactively from flags.
package main

import (
	"fmt"
	"os"
)

// Automatically set through -ldflags, for example with
// go install -ldflags "-X main.version=`git describe --tags` -X main.gitCommit=`git rev-parse HEAD`"
var (
	version   = "master"
	gitCommit = "none"
	buildDate = "unknown"
)

func main() {
	if err := CLI().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
