package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect and rebuild the catalog index",
}

var indexInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the loaded catalog and index parameters",
	RunE:  runIndexInfo,
}

var indexReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Rebuild the catalog from the dataset files",
	RunE:  runIndexReload,
}

func init() {
	indexCmd.AddCommand(indexInfoCmd)
	indexCmd.AddCommand(indexReloadCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexInfo(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	if err := requireServices(ctx); err != nil {
		return err
	}
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	info, err := catalogService.Info()
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}

	cfg := info.Config
	cmd.Printf("Records:     %d\n", info.Records)
	cmd.Printf("Dimension:   %d\n", info.Dimension)
	cmd.Printf("Backend:     %s\n", info.Backend)
	cmd.Printf("Version:     %d\n", info.Version)
	cmd.Printf("Distance:    %s\n", cfg.Distance)
	cmd.Printf("Tables:      %d\n", cfg.NumTables)
	cmd.Printf("Probes:      %d\n", cfg.NumProbes)
	cmd.Printf("Hash funcs:  %d\n", cfg.NumHashFunctions)
	cmd.Printf("Rotations:   %d\n", cfg.NumRotations)
	cmd.Printf("Hash bits:   %d\n", cfg.HashBits)
	if len(info.Buckets) > 0 {
		lo, hi := slices.Min(info.Buckets), slices.Max(info.Buckets)
		cmd.Printf("Buckets:     %d-%d per table\n", lo, hi)
		if sparse, bits := domain.SparseBuckets(info.Records, info.Buckets); sparse {
			cmd.Printf("\nWarning: most records are alone in their bucket, so recall is poor.\n")
			cmd.Printf("Lower index.hash_bits to about %d and run 'wikirec index reload'.\n", bits)
		}
	}
	return nil
}

func runIndexReload(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	if err := requireServices(ctx); err != nil {
		return err
	}
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	if err := catalogService.Reload(ctx); err != nil {
		return fmt.Errorf("failed to reload catalog: %w", err)
	}
	info, err := catalogService.Info()
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	cmd.Printf("Catalog reloaded: %d records (version %d)\n", info.Records, info.Version)
	return nil
}
