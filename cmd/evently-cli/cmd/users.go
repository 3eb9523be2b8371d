package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	Long:  `List all user accounts in the data directory. Password hashes are never shown.`,
	Run:   usersHandler,
}

func usersHandler(cmd *cobra.Command, args []string) {
	s, err := openUserStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open user store: %v\n", err)
		os.Exit(1)
	}

	users, err := s.All(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to list users: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tREGISTRATIONS\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			u.ID, u.Name, u.Email, len(u.RegisteredEvents), u.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(usersCmd)
}
