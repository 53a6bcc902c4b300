package main

import (
	"os"

	"github.com/gomantics/repograph/cmds/repograph/commands"
)

func main() {
	os.Exit(commands.Execute())
}
