package main

//go:generate goversioninfo -platform-specific

import (
	"fmt"
	"deliverycore/cmd/deliverycore-mcp/commands"
	"os"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
