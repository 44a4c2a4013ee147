package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to TMDB",
	Long:  `Verify the API token by fetching the TMDB image configuration.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Testing connection to TMDB at %s...\n", cfg.TMDB.APIURL)

	ctx := context.Background()
	if err := tmdbClient.TestConnection(ctx); err != nil {
		return fmt.Errorf("failed to connect to TMDB: %w", err)
	}

	fmt.Println("✓ Connection successful!")

	images, err := tmdbClient.ConfigCache().GetOrFetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to get TMDB configuration: %w", err)
	}

	fmt.Printf("\nImage configuration:\n")
	fmt.Printf("- Base URL: %s\n", images.SecureBaseURL)
	fmt.Printf("- Poster sizes: %s\n", strings.Join(images.PosterSizes, ", "))
	fmt.Printf("- Cover width: %d\n", cfg.TMDB.CoverWidth)

	return nil
}
