package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/kaiwa-ai/kaiwa/src/catalog"
)

// UsageCmd shows the daily usage counters and remaining quota for the
// current plan.
type UsageCmd struct{}

// Run executes the usage command
func (c *UsageCmd) Run(ctx *kong.Context, cli *CLI) error {
	runCtx := context.Background()

	a, err := openApp(runCtx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.Ledger.Snapshot(runCtx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tUSED\tREMAINING\tLAST RESET")
	for _, m := range a.Catalog.ListByPlan(a.Profile.Plan) {
		rec := stats[m.ID]

		remaining, ok, err := a.Ledger.Remaining(runCtx, m.ID, a.Profile.Plan)
		if err != nil {
			return err
		}
		remainingStr := "-"
		switch {
		case !ok:
			remainingStr = "n/a"
		case remaining == catalog.Unlimited:
			remainingStr = "unlimited"
		default:
			remainingStr = fmt.Sprintf("%d", remaining)
		}

		lastReset := "-"
		if !rec.LastReset.IsZero() {
			lastReset = rec.LastReset.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", m.ID, rec.Count, remainingStr, lastReset)
	}
	return w.Flush()
}
