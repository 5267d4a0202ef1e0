// Command hub aggregates messages, emails and notes from every configured
// provider behind one CLI, HTTP API, MCP server and terminal UI.
package main

import (
	"context"
	"os"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/cli"
)

func main() {
	cli.SetConfigOpener(openConfig)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
