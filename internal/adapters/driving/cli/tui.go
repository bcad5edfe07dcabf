package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikirec/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive reader.

Type an article title, read its summary and pick a recommendation to
keep going. The catalog is rebuilt in the background when the dataset
files change.

Controls:
  Enter    - Look up / Open recommendation
  ↑/k, ↓/j - Navigate recommendations
  n        - New query
  h        - History (c clears it)
  Esc      - Back
  ?        - Toggle help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ctx := commandContext(cmd)
	if err := requireServices(ctx); err != nil {
		return err
	}

	session := sessionID
	if session == DefaultSessionID {
		session = tui.DefaultSessionID
	}

	app, err := tui.NewApp(&tui.Ports{
		Explorer:  explorerService,
		History:   historyService,
		Catalog:   catalogService,
		SessionID: session,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	startWatch(ctx)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
