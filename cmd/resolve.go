package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/s0up4200/tmdb-resolver/model"
	"github.com/s0up4200/tmdb-resolver/resolver"
)

var (
	movieID  string
	imdbFlag bool
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve [link]",
	Short: "Resolve a movie link or ID",
	Long: `Resolve a themoviedb.org movie link, an imdb.com title link, or a bare ID
given with --id, and print the movie record as JSON.`,
	Example: `  tmdb-resolver resolve https://www.themoviedb.org/movie/615665-holidate
  tmdb-resolver resolve --id tt9866072 --imdb`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&movieID, "id", "", "resolve a bare ID instead of a link")
	resolveCmd.Flags().BoolVar(&imdbFlag, "imdb", false, "the ID given with --id is an IMDb ID")
}

func runResolve(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (movieID == "") {
		return fmt.Errorf("specify either a link or --id")
	}

	ctx := context.Background()

	var (
		movie *model.Movie
		err   error
	)
	if movieID != "" {
		source := model.SourceTMDB
		if imdbFlag {
			source = model.SourceIMDb
		}
		movie, err = movieResolver.ResolveByID(ctx, movieID, source)
	} else {
		movie, err = movieResolver.ResolveByLink(ctx, args[0])
	}

	if errors.Is(err, resolver.ErrNotFound) {
		return fmt.Errorf("no movie found: %w", err)
	}
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(movie)
}
