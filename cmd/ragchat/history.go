package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List archived conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if a.archive == nil {
				return errors.New("archive is disabled (archive_path is empty)")
			}

			w := cmd.OutOrStdout()
			convs := a.ctrl.CurrentConversations()
			if len(convs) == 0 {
				fmt.Fprintln(w, "no conversations yet")
				return nil
			}
			for _, c := range convs {
				color.New(color.Bold).Fprintf(w, "%s ", c.Name)
				color.New(color.Faint).Fprintf(w, "%s  %s  %d messages\n",
					c.ID, c.Timestamp.Format("2006/01/02 15:04"), len(a.ctrl.Messages(c.ID)))
				if c.LastMessage != "" {
					fmt.Fprintf(w, "    %s\n", c.Description())
				}
			}
			return nil
		},
	}
}
