package cli

import (
	"context"
	"errors"
	"strings"

	"bonsai-cli/internal/chat"
	"bonsai-cli/internal/model"
	"bonsai-cli/internal/tasklist"
	"bonsai-cli/internal/transcript"

	"github.com/spf13/cobra"
)

func newChatCmd(app *App) *cobra.Command {
	var speak bool
	var historyLimit int

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send one message to the assistant",
		Long: strings.TrimSpace(`
Sends a message to the conversational assistant. The assistant can mutate
tasks ("add a task to water the plants"); when its reply indicates it did,
the task list is refetched and included in the output so scripts see the
post-mutation state.

Recent transcript messages (stored locally) are sent as conversation
context, so consecutive invocations behave like one conversation.
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return writeErr(cmd, errors.New("empty message"))
			}

			c, sess, st, err := authedClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmdContext(cmd)
			cfg, _ := st.LoadConfig()

			bridge := chat.NewBridge(c, sess.User.ID)
			if speak && cfg.SpeakCommand != "" {
				bridge.Output = chat.CommandSpeaker{Command: cfg.SpeakCommand}
			}

			var ts *transcript.Store
			if !cfg.TranscriptDisabled {
				if ts, err = transcript.Open(ctx, st.Dir); err == nil {
					defer ts.Close()
					if prior, err := ts.Recent(ctx, sess.User.ID, historyLimit); err == nil {
						bridge.Seed(prior)
					}
				}
			}

			ctl := tasklist.New(c)
			refreshed := false
			bridge.OnMutation = func() {
				// Same reconciliation as direct actions: refetch everything.
				refreshed = ctl.Refresh(ctx) == nil
			}

			reply, mutated, sendErr := bridge.Send(ctx, message)
			if ts != nil {
				_ = ts.Append(ctx, sess.User.ID, model.ChatMessage{Role: model.ChatRoleUser, Content: message})
				_ = ts.Append(ctx, sess.User.ID, model.ChatMessage{Role: model.ChatRoleAssistant, Content: reply})
			}
			if sendErr != nil {
				return writeErr(cmd, sendErr)
			}

			out := map[string]any{
				"data": map[string]any{"reply": reply},
				"meta": map[string]any{"mutated": mutated},
			}
			if refreshed {
				out["data"].(map[string]any)["tasks"] = ctl.Tasks()
			}
			return writeOut(cmd, app, out)
		},
	}

	cmd.Flags().BoolVar(&speak, "speak", false, "Speak the reply via the configured speakCommand")
	cmd.Flags().IntVar(&historyLimit, "history", 20, "Max stored messages to send as context")

	cmd.AddCommand(newChatLogCmd(app))
	cmd.AddCommand(newChatClearCmd(app))
	return cmd
}

func withTranscript(cmd *cobra.Command, app *App, fn func(ctx context.Context, ts *transcript.Store, userID string) error) error {
	_, sess, st, err := authedClient(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	ctx := cmdContext(cmd)
	ts, err := transcript.Open(ctx, st.Dir)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer ts.Close()
	return fn(ctx, ts, sess.User.ID)
}

func newChatLogCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the locally stored conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTranscript(cmd, app, func(ctx context.Context, ts *transcript.Store, userID string) error {
				msgs, err := ts.Recent(ctx, userID, limit)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{"messages": msgs},
					"meta": map[string]any{"count": len(msgs)},
				})
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Max messages to show")
	return cmd
}

func newChatClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the locally stored conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTranscript(cmd, app, func(ctx context.Context, ts *transcript.Store, userID string) error {
				if err := ts.Clear(ctx, userID); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{"cleared": true},
				})
			})
		},
	}
}
