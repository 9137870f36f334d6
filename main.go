package main

import (
	"github.com/vendroo/repomirror/cmd"
	"github.com/vendroo/repomirror/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
