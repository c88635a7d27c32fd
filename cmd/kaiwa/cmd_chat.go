package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/kaiwa-ai/kaiwa/src/convstore"
	"github.com/kaiwa-ai/kaiwa/src/gateway"
)

// ChatCmd sends one message into a conversation and prints the reply.
// When the chosen model is denied, the catalog fallback is used silently,
// matching the chat-send path of the app.
type ChatCmd struct {
	Message      string `arg:"" help:"Message to send"`
	Model        string `help:"Model id (defaults to the conversation's model or the configured default)"`
	Conversation string `help:"Conversation id to continue (a new one is created when omitted)"`
}

// Run executes the chat command
func (c *ChatCmd) Run(ctx *kong.Context, cli *CLI) error {
	runCtx := context.Background()

	a, err := openApp(runCtx, cli)
	if err != nil {
		return err
	}
	defer a.Close()

	var conv *convstore.Conversation
	if c.Conversation != "" {
		conv, err = a.Conversations.GetByID(runCtx, c.Conversation)
		if err != nil {
			return err
		}
	} else {
		modelID := c.Model
		if modelID == "" {
			modelID = a.Config.DefaultModel
		}
		conv = convstore.New(modelID)
	}

	modelID := c.Model
	if modelID == "" {
		modelID = conv.ModelID
	}

	conv.Append(convstore.NewMessage(convstore.RoleUser, c.Message))

	reply, err := a.Gateway.Send(runCtx, conv, modelID, a.Profile)
	if err != nil {
		if denial, ok := gateway.IsDenial(err); ok {
			return fmt.Errorf("request denied: %s", denial.Reason.Message())
		}
		return err
	}

	conv.Append(reply)
	conv.ModelID = reply.Model
	if err := a.Conversations.Save(runCtx, conv); err != nil {
		return err
	}

	if reply.Model != modelID {
		fmt.Printf("(answered by fallback model %s)\n", reply.Model)
	}
	fmt.Println(reply.Content)
	fmt.Printf("\nconversation: %s\n", conv.ID)
	return nil
}
