package main

import (
	"os"

	"github.com/arthur-debert/archup/cmd/archup"
)

func main() {
	os.Exit(archup.Execute())
}
