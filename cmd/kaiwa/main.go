package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	APIKey   string `env:"OPENROUTER_API_KEY" help:"OpenRouter API key"`
	BaseURL  string `help:"Custom API base URL"`
	DBPath   string `help:"Database path (defaults to XDG state dir)"`
	LogLevel string `default:"warn" help:"Log level"`

	Chat          ChatCmd         `cmd:"" help:"Send a message in a conversation"`
	Model         ModelCmd        `cmd:"" help:"Model catalog and availability"`
	Usage         UsageCmd        `cmd:"" help:"Show daily usage counters"`
	Profile       ProfileCmd      `cmd:"" help:"Show or change the user profile"`
	Conversations ConversationCmd `cmd:"" help:"Manage stored conversations"`
	Auth          AuthCmd         `cmd:"" help:"Manage the stored API key"`
	Migrate       MigrateCmd      `cmd:"" help:"Storage migrations"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("kaiwa"),
		kong.Description("AI chat client with plan-aware model routing"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
