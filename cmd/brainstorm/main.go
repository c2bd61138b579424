// Command brainstorm runs the Brainstorm filesystem-backed MCP
// collaboration server, or inspects its data root via supporting
// subcommands.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
