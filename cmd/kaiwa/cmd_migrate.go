package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
)

// MigrateCmd manages storage migrations
type MigrateCmd struct {
	Legacy MigrateLegacyCmd `cmd:"" help:"Fold the legacy conversation dump into per-id records"`
}

// MigrateLegacyCmd imports the legacy full-dump conversation history.
// Database schema migrations run automatically on open.
type MigrateLegacyCmd struct{}

// Run executes the migrate legacy command
func (c *MigrateLegacyCmd) Run(ctx *kong.Context, cli *CLI) error {
	runCtx := context.Background()

	a, err := openApp(runCtx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	imported, err := a.Conversations.MigrateLegacy(runCtx)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d conversations from legacy history\n", imported)
	return nil
}
