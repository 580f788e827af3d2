// Command holocron runs the Holocron API and its maintenance commands.
//
// All logic lives in internal/; main only hands control to the command tree.
package main

import "github.com/sakif/holocron/internal/cli"

func main() {
	cli.Execute()
}
