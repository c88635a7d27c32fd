package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/kaiwa-ai/kaiwa/src/catalog"
)

// ModelCmd manages model operations
type ModelCmd struct {
	List  ModelListCmd  `cmd:"" help:"List models visible to the current plan"`
	Show  ModelShowCmd  `cmd:"" help:"Show a model's descriptor"`
	Check ModelCheckCmd `cmd:"" help:"Check whether a model is usable right now"`
}

// ModelListCmd lists catalog models visible to the user's plan
type ModelListCmd struct {
	Plan   string `help:"Override plan (free, lite, heavy)"`
	Format string `help:"Output format (table, json)" default:"table"`
}

// Run executes the model list command
func (c *ModelListCmd) Run(ctx *kong.Context, cli *CLI) error {
	runCtx := context.Background()

	a, err := openApp(runCtx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	plan := a.Profile.Plan
	if c.Plan != "" {
		if !catalog.ValidPlan(c.Plan) {
			return fmt.Errorf("invalid plan: %s", c.Plan)
		}
		plan = catalog.Plan(c.Plan)
	}

	models := a.Catalog.ListByPlan(plan)

	switch c.Format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(models)
	case "table":
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPROVIDER\tTIER\tCONTEXT\tLOCAL")
		for _, m := range models {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%v\n",
				m.ID, m.Name, m.Provider, m.Tier, m.ContextWindow, m.Local)
		}
		return w.Flush()
	default:
		return fmt.Errorf("invalid format: %s", c.Format)
	}
}

// ModelShowCmd prints one model descriptor
type ModelShowCmd struct {
	Model string `arg:"" help:"Model id"`
}

// Run executes the model show command
func (c *ModelShowCmd) Run(ctx *kong.Context, cli *CLI) error {
	runCtx := context.Background()

	a, err := openApp(runCtx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	m, err := a.Catalog.Describe(c.Model)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// ModelCheckCmd runs the explicit model-switch availability check. Unlike
// the chat path, a denial is surfaced with its fallback suggestion instead
// of being silently substituted.
type ModelCheckCmd struct {
	Model string `arg:"" help:"Model id"`
}

// Run executes the model check command
func (c *ModelCheckCmd) Run(ctx *kong.Context, cli *CLI) error {
	runCtx := context.Background()

	a, err := openApp(runCtx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	decision, err := a.Gateway.CheckModel(runCtx, c.Model, a.Profile)
	if err != nil {
		return err
	}

	if decision.Allowed {
		fmt.Printf("%s is available on plan %s\n", c.Model, a.Profile.Plan)
		return nil
	}

	fmt.Printf("%s is not available: %s\n", c.Model, decision.Reason.Message())
	if decision.FallbackID != "" {
		if fb, err := a.Catalog.Describe(decision.FallbackID); err == nil {
			fmt.Printf("suggested fallback: %s (%s)\n", fb.ID, fb.Name)
		}
	}
	return nil
}
