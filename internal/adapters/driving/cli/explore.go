package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/logger"
)

var exploreJSON bool

var lookupCmd = &cobra.Command{
	Use:   "lookup [query]",
	Short: "Find an article and related reading",
	Long: `Searches the encyclopedia for the query, prints the article link and
summary, recommends related articles and records the visit in history.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

var openCmd = &cobra.Command{
	Use:   "open [page-id]",
	Short: "Open an article by page id",
	Long: `Opens a recommended article by its page id, prints its summary and
further recommendations, and records the visit in history.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	lookupCmd.Flags().BoolVar(&exploreJSON, "json", false, "output the article as JSON")
	openCmd.Flags().BoolVar(&exploreJSON, "json", false, "output the article as JSON")
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(openCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := requireServices(ctx); err != nil {
		return err
	}
	if explorerService == nil {
		return errors.New("explorer service not configured")
	}

	query := strings.Join(args, " ")
	view, err := explorerService.Lookup(ctx, sessionID, query)
	if err != nil {
		return articleError(cmd, err, query)
	}
	return printArticle(cmd, view)
}

func runOpen(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := requireServices(ctx); err != nil {
		return err
	}
	if explorerService == nil {
		return errors.New("explorer service not configured")
	}

	view, err := explorerService.Open(ctx, sessionID, args[0])
	if err != nil {
		return articleError(cmd, err, args[0])
	}
	return printArticle(cmd, view)
}

// articleError prints the reader notice. Not found and ambiguous are
// answers, not failures.
func articleError(cmd *cobra.Command, err error, subject string) error {
	cmd.Println(domain.Notice(err))
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrAmbiguous) {
		return nil
	}
	logger.L().Error().Err(err).Str("session", sessionID).Str("title", subject).Msg("request failed")
	return err
}

func printArticle(cmd *cobra.Command, v *domain.ArticleView) error {
	if exploreJSON {
		return printJSON(cmd, v)
	}

	cmd.Printf("%s\n%s\n", v.Title, v.URL)
	if v.Summary != "" {
		cmd.Println()
		cmd.Println(v.Summary)
	}
	if len(v.Recommendations) > 0 {
		cmd.Println()
		cmd.Println("Read next:")
		for i, r := range v.Recommendations {
			cmd.Printf("  %d. %s (wikirec open %s)\n", i+1, r.Title, r.ID)
		}
	}
	return nil
}
