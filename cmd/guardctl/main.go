// Command guardctl inspects console users and remember-me tokens.
package main

import (
	"fmt"
	"os"

	"github.com/rhuss/adminguard/cmd/guardctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
