// ergoctl evaluates counter operations locally or against a running server
package main

import (
	"os"

	"github.com/ergo/ergo/api/cmd/ergoctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
