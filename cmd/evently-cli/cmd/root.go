package cmd

import (
	"os"
	"path/filepath"

	"github.com/evently/evently/internal/password"
	"github.com/evently/evently/internal/store"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var dataDir string

var rootCmd = &cobra.Command{
	Use:   "evently-cli",
	Short: "Evently CLI tool",
	Long: `Evently CLI is a command-line interface for inspecting an Evently
data directory. All commands are read-only: they open the JSON collection
files directly and never write to them.

Available commands:
  events    List events
  users     List users
  stats     Show aggregate event statistics
  watch     Re-print statistics whenever the data files change

Use "evently-cli [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "path to the Evently data directory")
}

// openEventStore loads the event collection read-only.
func openEventStore() (*store.EventStore, error) {
	return store.NewEventStore(afero.NewOsFs(), filepath.Join(dataDir, "events.json"))
}

// openUserStore loads the user collection read-only.
func openUserStore() (*store.UserStore, error) {
	return store.NewUserStore(afero.NewOsFs(), filepath.Join(dataDir, "users.json"), password.New())
}
