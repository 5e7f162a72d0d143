package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ragchat/internal/backend"
)

func newAskCmd() *cobra.Command {
	var (
		attach       []string
		conversation string
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Send one question and print the answer with its sources",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := ""
			if len(args) == 1 {
				question = args[0]
			}

			attachments, err := readAttachments(attach)
			if err != nil {
				return err
			}

			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if !a.ctrl.Authorized() {
				return errors.New("sign in with --email and --password first")
			}

			if conversation != "" {
				if !a.ctrl.OnSelectConversation(conversation) {
					return errors.Errorf("no archived conversation %q", conversation)
				}
			} else {
				a.ctrl.OnNewConversation()
			}

			out, ok := a.ctrl.OnSubmit(cmd.Context(), question, attachments)
			if !ok {
				return errors.New("nothing to send: give a question or --attach a file")
			}
			if out.Err != nil {
				return errors.Wrap(out.Err, "asking")
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, out.Reply.Content)
			if len(out.Reply.Sources) > 0 {
				fmt.Fprintln(w)
				color.New(color.Bold).Fprintln(w, "Sources:")
				for i, s := range out.Reply.Sources {
					color.New(color.FgCyan).Fprintf(w, "[%d] %s ", i+1, s.Title)
					color.New(color.Faint).Fprintln(w, s.URL)
					if s.Snippet != "" {
						fmt.Fprintf(w, "    %s\n", s.Snippet)
					}
				}
			}
			color.New(color.Faint).Fprintf(w, "\nconversation %s\n", out.ConversationID)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&attach, "attach", nil, "file to send along with the question (repeatable)")
	cmd.Flags().StringVar(&conversation, "conversation", "", "continue an archived conversation")
	return cmd
}

func readAttachments(paths []string) ([]backend.Attachment, error) {
	var atts []backend.Attachment
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "reading attachment %s", p)
		}
		ct := mime.TypeByExtension(filepath.Ext(p))
		if ct == "" {
			ct = "application/octet-stream"
		}
		atts = append(atts, backend.Attachment{Name: filepath.Base(p), ContentType: ct, Data: data})
	}
	return atts, nil
}
