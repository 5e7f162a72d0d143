package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ragchat/internal/admin"
	"ragchat/internal/auth"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage users and the knowledge base (admin accounts only)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			u := a.auth.State().User
			if u == nil || u.Role != auth.RoleAdmin {
				return errors.New("admin access required: sign in with an admin account")
			}
			return nil
		},
	}
	cmd.AddCommand(newAdminUsersCmd(admin.DemoDirectory()))
	cmd.AddCommand(newAdminDocsCmd(admin.DemoCatalog()))
	return cmd
}

func newAdminUsersCmd(dir *admin.Directory) *cobra.Command {
	var (
		search string
		page   int
	)
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users := dir.Search(search)
			p := admin.Paginate(len(users), page, admin.PerPage)
			if err := writeUsers(cmd.OutOrStdout(), users[p.Start:p.End]); err != nil {
				return err
			}
			printPageFooter(cmd, p)
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name or email")
	cmd.Flags().IntVar(&page, "page", 1, "page number")

	cmd.AddCommand(&cobra.Command{
		Use:   "status <id> <active|inactive|pending>",
		Short: "Change a user's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := admin.ParseUserStatus(args[1])
			if err != nil {
				return err
			}
			u, ok := dir.SetStatus(args[0], status)
			if !ok {
				return errors.Errorf("user %s not found", args[0])
			}
			return writeUsers(cmd.OutOrStdout(), []admin.User{u})
		},
	})
	return cmd
}

func newAdminDocsCmd(catalog *admin.Catalog) *cobra.Command {
	var (
		search string
		typ    string
		status string
		page   int
	)
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "List knowledge-base documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			docType, err := admin.ParseDocumentType(typ)
			if err != nil {
				return err
			}
			docStatus, err := admin.ParseDocumentStatus(status)
			if err != nil {
				return err
			}

			docs := catalog.List(admin.Filter{Search: search, Type: docType, Status: docStatus})
			p := admin.Paginate(len(docs), page, admin.PerPage)
			if err := writeDocs(cmd.OutOrStdout(), docs[p.Start:p.End]); err != nil {
				return err
			}
			printPageFooter(cmd, p)
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by title or tag")
	cmd.Flags().StringVar(&typ, "type", "all", "all|pdf|text|webpage|faq")
	cmd.Flags().StringVar(&status, "status", "all", "all|active|processing|error|inactive")
	cmd.Flags().IntVar(&page, "page", 1, "page number")

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <id>",
		Short: "Switch a document between active and inactive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := catalog.Toggle(args[0])
			if err != nil {
				return err
			}
			return writeDocs(cmd.OutOrStdout(), []admin.Document{d})
		},
	})
	return cmd
}

func writeUsers(out io.Writer, users []admin.User) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tLAST LOGIN\tSTATUS")
	for _, u := range users {
		last := "-"
		if !u.LastLogin.IsZero() {
			last = u.LastLogin.Format("2006/01/02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, last, u.Status.Label())
	}
	return w.Flush()
}

func writeDocs(out io.Writer, docs []admin.Document) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTYPE\tSIZE\tUPDATED\tSTATUS\tTAGS")
	for _, d := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.Title, d.Type.Label(), d.Size, d.UpdatedAt.Format("2006/01/02 15:04"), d.Status.Label(), tagList(d.Tags))
	}
	return w.Flush()
}

// tagList shows the first two tags and a count of the rest.
func tagList(tags []string) string {
	if len(tags) <= 2 {
		return strings.Join(tags, ", ")
	}
	return fmt.Sprintf("%s, +%d", strings.Join(tags[:2], ", "), len(tags)-2)
}

func printPageFooter(cmd *cobra.Command, p admin.Page) {
	if p.Count == 0 {
		color.New(color.Faint).Fprintln(cmd.OutOrStdout(), "no results")
		return
	}
	if p.Empty() {
		color.New(color.Faint).Fprintf(cmd.OutOrStdout(), "page %d is out of range (%d pages)\n", p.Number, p.Total)
		return
	}
	color.New(color.Faint).Fprintf(cmd.OutOrStdout(), "%d 件中 %d から %d を表示 (page %d/%d)\n",
		p.Count, p.Start+1, p.End, p.Number, p.Total)
}
