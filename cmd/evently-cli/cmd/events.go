package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var eventsUpcomingOnly bool

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List events",
	Long: `List all events in the data directory, sorted by start time.

Examples:
  evently-cli events                  # All events
  evently-cli events --upcoming       # Only events that have not started yet
  evently-cli events --data-dir /srv/evently/data`,
	Run: eventsHandler,
}

func eventsHandler(cmd *cobra.Command, args []string) {
	s, err := openEventStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open event store: %v\n", err)
		os.Exit(1)
	}

	events, err := s.FindAll(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to list events: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tSTARTS\tSEATS\tUPCOMING")
	for _, e := range events {
		if eventsUpcomingOnly && !e.IsUpcoming {
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s %s\t%d/%d\t%v\n",
			e.ID, e.Title, e.Category, e.Date, e.Time, e.Registrations, e.Capacity, e.IsUpcoming)
	}
	w.Flush()
}

func init() {
	eventsCmd.Flags().BoolVar(&eventsUpcomingOnly, "upcoming", false, "show only upcoming events")
	rootCmd.AddCommand(eventsCmd)
}
