// Package main is the entry point for the tagcalc CLI.
package main

import (
	"os"

	"github.com/f3rmion/tagcalc/cmd/tagcalc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
