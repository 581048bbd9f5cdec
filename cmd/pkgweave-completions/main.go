package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/pkgweave/cmd/pkgweave"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <bash|zsh|fish|powershell>\n", os.Args[0])
		os.Exit(1)
	}

	rootCmd := pkgweave.NewRootCmd()
	rootCmd.SetOut(os.Stdout)
	if err := pkgweave.GenerateCompletion(rootCmd, os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating %s completion: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}
