package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vmunix/coursarr/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show download history",
	RunE:  runHistory,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <hash>",
	Short: "Forget a downloaded video so it gets fetched again",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRm,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyRmCmd)
}

func openHistory() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.History.Path)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List()
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(records)
		return nil
	}

	if len(records) == 0 {
		fmt.Println("No downloads recorded")
		return nil
	}
	for _, r := range records {
		fmt.Printf("%s  %-40.40s %-9s %s\n",
			r.Hash[:8], r.Title, humanize.Bytes(uint64(r.SizeBytes)),
			humanize.Time(r.DownloadedAt))
	}
	return nil
}

func runHistoryRm(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List()
	if err != nil {
		return err
	}
	// Accept the short prefix printed by the list.
	hash := args[0]
	for _, r := range records {
		if r.Hash == hash || (len(hash) >= 8 && len(r.Hash) >= len(hash) && r.Hash[:len(hash)] == hash) {
			if err := store.Delete(r.Hash); err != nil {
				return err
			}
			if !quietOutput {
				fmt.Printf("Forgot %s (%s)\n", r.Hash[:8], r.Title)
			}
			return nil
		}
	}
	return fmt.Errorf("no record matching %q", hash)
}
