// Package seed implements the seed subcommand populating demonstration data
package seed

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RustycyberShackleford/WellAtlas3.0/internal/conf"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/datastore"
	seeddata "github.com/RustycyberShackleford/WellAtlas3.0/internal/seed"
)

// Command creates the seed subcommand
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate an empty database with demonstration data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), settings)
		},
	}
}

func runSeed(ctx context.Context, settings *conf.Settings) error {
	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return fmt.Errorf("opening record store: %w", err)
	}
	defer func() { _ = store.Close() }()

	return seeddata.SeedIfEmpty(ctx, store)
}
