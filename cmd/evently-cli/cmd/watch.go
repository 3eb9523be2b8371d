package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-print statistics whenever the data files change",
	Long: `Watch the data directory and re-print the stats summary every time a
collection file is rewritten. The server rewrites the whole file on every
mutation, so each write event corresponds to one mutation.

Press Ctrl+C to stop.`,
	Run: watchHandler,
}

func watchHandler(cmd *cobra.Command, args []string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to create watcher: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Close()

	if err := watcher.Add(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to watch %s: %v\n", dataDir, err)
		os.Exit(1)
	}

	if err := printStats(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			fmt.Printf("\n-- %s changed --\n", filepath.Base(event.Name))
			if err := printStats(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
