// Package main is the entry of the conveyorsim command.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/conveyorsim/cmd"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
