// Package main is the entry point for the rowguard CLI binary.
package main

import (
	"os"

	cli "rowguard/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
