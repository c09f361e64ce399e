package main

import (
	"os"

	"github.com/cristianoliveira/soundboard/cmd"
	"github.com/cristianoliveira/soundboard/internal/colors"
)

func main() {
	os.Exit(run(cmd.Execute))
}

// run executes the command tree and maps failure to an exit code.
func run(execute func() error) int {
	if err := execute(); err != nil {
		colors.Error(err.Error())
		return 1
	}
	return 0
}
