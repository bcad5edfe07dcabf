package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear reading history",
	Long: `Shows the most recent visits for the current session, oldest first.
Use --session to pick another session.`,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent visits",
	RunE:  runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear reading history",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "output history as JSON")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	if err := requireHistory(ctx); err != nil {
		return err
	}
	if historyService == nil {
		return errors.New("history service not configured")
	}

	entries, err := historyService.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if historyJSON {
		return printJSON(cmd, entries)
	}

	if len(entries) == 0 {
		cmd.Println("History is empty.")
		return nil
	}
	for i, e := range entries {
		cmd.Printf("  %d. %s\n     %s\n", i+1, e.Title, e.URL)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	if err := requireHistory(ctx); err != nil {
		return err
	}
	if historyService == nil {
		return errors.New("history service not configured")
	}

	if err := historyService.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	cmd.Println("History cleared.")
	return nil
}
