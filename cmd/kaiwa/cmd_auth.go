package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
)

// AuthCmd manages the stored API key
type AuthCmd struct {
	SetKey AuthSetKeyCmd `cmd:"" help:"Store the OpenRouter API key"`
	Show   AuthShowCmd   `cmd:"" help:"Show whether a key is configured"`
}

// AuthSetKeyCmd stores the API key in secure storage
type AuthSetKeyCmd struct {
	Key string `arg:"" help:"API key value"`
}

// Run executes the auth set-key command
func (c *AuthSetKeyCmd) Run(ctx *kong.Context, cli *CLI) error {
	runCtx := context.Background()

	a, err := openApp(runCtx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Credentials.SetAPIKey(runCtx, c.Key); err != nil {
		return err
	}
	fmt.Println("API key stored")
	return nil
}

// AuthShowCmd reports whether a key is available
type AuthShowCmd struct{}

// Run executes the auth show command
func (c *AuthShowCmd) Run(ctx *kong.Context, cli *CLI) error {
	runCtx := context.Background()

	a, err := openApp(runCtx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	key, err := a.Credentials.APIKey(runCtx)
	if err != nil {
		return err
	}
	if key == "" {
		fmt.Println("no API key configured")
		return nil
	}
	fmt.Printf("API key configured (%d characters)\n", len(key))
	return nil
}
