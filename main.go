// The main package for the malbox executable.
package main

import (
	"github.com/malbox/malbox/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
