package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate event statistics",
	Long: `Show totals and a per-category breakdown for the event collection.

Example:
  evently-cli stats --data-dir /srv/evently/data`,
	Run: statsHandler,
}

func statsHandler(cmd *cobra.Command, args []string) {
	if err := printStats(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printStats loads the event collection and writes the stats summary to
// stdout. Shared with the watch command.
func printStats() error {
	s, err := openEventStore()
	if err != nil {
		return fmt.Errorf("failed to open event store: %w", err)
	}

	stats, err := s.GetEventStats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	fmt.Printf("Total events:        %d\n", stats.TotalEvents)
	fmt.Printf("Upcoming events:     %d\n", stats.UpcomingEvents)
	fmt.Printf("Total registrations: %d\n", stats.TotalRegistrations)

	if len(stats.Categories) > 0 {
		fmt.Println("\nBy category:")
		titler := cases.Title(language.English)
		categories := make([]string, 0, len(stats.Categories))
		for category := range stats.Categories {
			categories = append(categories, category)
		}
		slices.Sort(categories)
		for _, category := range categories {
			fmt.Printf("  %-20s %d\n", titler.String(category), stats.Categories[category])
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
