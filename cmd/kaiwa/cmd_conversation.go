package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"
)

// ConversationCmd manages stored conversations
type ConversationCmd struct {
	List   ConversationListCmd   `cmd:"" help:"List conversations, most recent first"`
	Show   ConversationShowCmd   `cmd:"" help:"Print a conversation's messages"`
	Delete ConversationDeleteCmd `cmd:"" help:"Delete a conversation"`
}

// ConversationListCmd lists conversations
type ConversationListCmd struct{}

// Run executes the conversation list command
func (c *ConversationListCmd) Run(ctx *kong.Context, cli *CLI) error {
	runCtx := context.Background()

	a, err := openApp(runCtx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	convs, err := a.Conversations.ListAll(runCtx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tMODEL\tMESSAGES\tUPDATED")
	for _, conv := range convs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			conv.ID, conv.Title, conv.ModelID, len(conv.Messages),
			conv.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// ConversationShowCmd prints a conversation
type ConversationShowCmd struct {
	ID string `arg:"" help:"Conversation id"`
}

// Run executes the conversation show command
func (c *ConversationShowCmd) Run(ctx *kong.Context, cli *CLI) error {
	runCtx := context.Background()

	a, err := openApp(runCtx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	conv, err := a.Conversations.GetByID(runCtx, c.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n\n", conv.Title, conv.ModelID)
	for _, msg := range conv.Messages {
		label := msg.Role
		if msg.Model != "" {
			label = fmt.Sprintf("%s (%s)", msg.Role, msg.Model)
		}
		fmt.Printf("[%s] %s\n", label, msg.Content)
	}
	return nil
}

// ConversationDeleteCmd deletes a conversation
type ConversationDeleteCmd struct {
	ID string `arg:"" help:"Conversation id"`
}

// Run executes the conversation delete command
func (c *ConversationDeleteCmd) Run(ctx *kong.Context, cli *CLI) error {
	runCtx := context.Background()

	a, err := openApp(runCtx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Conversations.Delete(runCtx, c.ID); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", c.ID)
	return nil
}
