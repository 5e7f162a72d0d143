package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ragchat/internal/ui"
)

func runChat(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	model := ui.NewModel(cmd.Context(), a.ctrl, ui.Options{
		SidebarWidth:   a.cfg.UI.SidebarWidth,
		RenderMarkdown: a.cfg.UI.RenderMarkdown,
	})

	// Start the application
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
