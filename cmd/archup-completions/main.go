package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/archup/cmd/archup"
)

// Writes completion scripts for every supported shell into a directory,
// for packaging.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <output-dir>\n", os.Args[0])
		os.Exit(1)
	}
	dir := os.Args[1]
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", dir, err)
		os.Exit(1)
	}

	rootCmd := archup.NewRootCmd()
	generators := map[string]func(string) error{
		"archup.bash": func(p string) error { return rootCmd.GenBashCompletionFileV2(p, true) },
		"_archup":     rootCmd.GenZshCompletionFile,
		"archup.fish": func(p string) error { return rootCmd.GenFishCompletionFile(p, true) },
		"archup.ps1":  rootCmd.GenPowerShellCompletionFileWithDesc,
	}

	for name, generate := range generators {
		if err := generate(filepath.Join(dir, name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", name, err)
			os.Exit(1)
		}
	}
}
