// The main package for the instascrape executable.
package main

import (
	"github.com/JakeFAU/instascrape/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
