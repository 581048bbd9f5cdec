package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/pkgweave/cmd/pkgweave"
)

func main() {
	rootCmd := pkgweave.NewRootCmd()

	if err := doc.GenMan(rootCmd, pkgweave.ManHeader(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
