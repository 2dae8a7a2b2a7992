// Command omniscience is the CLI entry point for the OmniScience
// workspace engine.
package main

import (
	"github.com/omniscience-ai/omniscience/internal/presentation/cli/commands"
)

func main() {
	commands.Execute()
}
