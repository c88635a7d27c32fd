package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/kaiwa-ai/kaiwa/src/catalog"
)

// ProfileCmd manages the local user profile
type ProfileCmd struct {
	Show    ProfileShowCmd    `cmd:"" help:"Show the current profile"`
	SetPlan ProfileSetPlanCmd `cmd:"" help:"Change the subscription plan"`
}

// ProfileShowCmd prints the profile and its plan pricing
type ProfileShowCmd struct{}

// Run executes the profile show command
func (c *ProfileShowCmd) Run(ctx *kong.Context, cli *CLI) error {
	runCtx := context.Background()

	a, err := openApp(runCtx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.Profile
	fmt.Printf("name:    %s\n", p.Name)
	fmt.Printf("plan:    %s (¥%d/month)\n", p.Plan, catalog.PriceJPY[p.Plan])
	fmt.Printf("id:      %s\n", p.ID)
	fmt.Printf("created: %s\n", p.CreatedAt.Format("2006-01-02"))
	return nil
}

// ProfileSetPlanCmd changes the subscription plan
type ProfileSetPlanCmd struct {
	Plan string `arg:"" help:"Plan name (free, lite, heavy)"`
}

// Run executes the profile set-plan command
func (c *ProfileSetPlanCmd) Run(ctx *kong.Context, cli *CLI) error {
	runCtx := context.Background()

	a, err := openApp(runCtx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Profiles.SetPlan(runCtx, a.Profile, catalog.Plan(c.Plan)); err != nil {
		return err
	}
	fmt.Printf("plan changed to %s (¥%d/month)\n", c.Plan, catalog.PriceJPY[catalog.Plan(c.Plan)])
	return nil
}
