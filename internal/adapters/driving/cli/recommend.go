package cli

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

var (
	recommendK    int
	recommendMax  int
	recommendJSON bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [title]",
	Short: "Recommend articles related to a title",
	Long: `Embeds the title, finds its nearest catalog articles and prints the
closest ones, never including the title itself.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendK, "neighbours", "k", domain.DefaultNeighbours, "neighbours to fetch from the index")
	recommendCmd.Flags().IntVarP(&recommendMax, "limit", "n", domain.DefaultMaxRecommendations, "maximum number of recommendations")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := requireServices(ctx); err != nil {
		return err
	}

	opts := domain.RecommendOptions{K: recommendK, MaxResults: recommendMax}
	recs, err := recommendationService.Recommend(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("recommend failed: %w", err)
	}

	if recommendJSON {
		return printJSON(cmd, recs)
	}

	if len(recs) == 0 {
		cmd.Println("No related articles found.")
		return nil
	}
	cmd.Println("Related articles:")
	for i, r := range recs {
		cmd.Printf("  %d. %s [%s]\n", i+1, r.Title, r.ID)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
