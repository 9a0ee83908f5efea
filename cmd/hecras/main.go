// Command hecras drives HEC-RAS project inventory, plan mutation, and
// simulator execution from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/jra3/hecras-orchestrator/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
