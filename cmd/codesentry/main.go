package main

import (
	"os"

	"github.com/codesentry/codesentry/cmd/codesentry/root"
)

func main() {
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
