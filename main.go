// Package main is the entry point for the pcapflow capture-file reader.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/pcapflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
