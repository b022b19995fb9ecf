package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/marquee/internal/catalog"
)

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List currently popular movies",
	Args:  cobra.NoArgs,
	RunE:  runPopularCmd,
}

var topRatedCmd = &cobra.Command{
	Use:   "top-rated",
	Short: "List the highest rated movies",
	Args:  cobra.NoArgs,
	RunE:  runTopRatedCmd,
}

var searchCmd = &cobra.Command{
	Use:   "search [flags] [query]...",
	Short: "Search movies by title or discover by filters",
	Long: `Search movies by title, or discover them by filters when no query is given.

Sorting, minimum rating and genre only apply to discover.

Examples:
  marquee search "The Matrix"
  marquee search alien --year 1979
  marquee search --year 2020 --genre action --sort vote_average.desc
  marquee search --genre "science fiction" --min-rating 7.5`,
	RunE: runSearchCmd,
}

var movieCmd = &cobra.Command{
	Use:   "movie <id>",
	Short: "Show movie details and credits",
	Args:  cobra.ExactArgs(1),
	RunE:  runMovieCmd,
}

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List movie genres",
	Args:  cobra.NoArgs,
	RunE:  runGenresCmd,
}

func init() {
	rootCmd.AddCommand(popularCmd, topRatedCmd, searchCmd, movieCmd, genresCmd)

	popularCmd.Flags().Int("page", 1, "Result page")
	topRatedCmd.Flags().Int("page", 1, "Result page")

	searchCmd.Flags().Int("page", 1, "Result page")
	searchCmd.Flags().Int("year", 0, "Release year")
	searchCmd.Flags().String("language", "", "Language (e.g. en-US)")
	searchCmd.Flags().String("sort", "", "Sort order: "+strings.Join(catalog.SortOptions, ", "))
	searchCmd.Flags().Float64("min-rating", 0, "Minimum rating (0-10)")
	searchCmd.Flags().String("genre", "", "Genre name or id")
}

func runPopularCmd(cmd *cobra.Command, _ []string) error {
	page, _ := cmd.Flags().GetInt("page")
	return listMovies(cmd, "Popular movies", func(a *app) (*catalog.Page[catalog.MovieSummary], error) {
		return a.catalog.Popular(cmd.Context(), page)
	})
}

func runTopRatedCmd(cmd *cobra.Command, _ []string) error {
	page, _ := cmd.Flags().GetInt("page")
	return listMovies(cmd, "Top rated movies", func(a *app) (*catalog.Page[catalog.MovieSummary], error) {
		return a.catalog.TopRated(cmd.Context(), page)
	})
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	q := catalog.SearchQuery{Query: strings.Join(args, " ")}
	q.Page, _ = cmd.Flags().GetInt("page")
	q.Year, _ = cmd.Flags().GetInt("year")
	q.Language, _ = cmd.Flags().GetString("language")
	q.SortBy, _ = cmd.Flags().GetString("sort")
	q.MinRating, _ = cmd.Flags().GetFloat64("min-rating")
	genre, _ := cmd.Flags().GetString("genre")

	title := "Discover"
	if q.Query != "" {
		title = fmt.Sprintf("Results for %q", q.Query)
	}

	return listMovies(cmd, title, func(a *app) (*catalog.Page[catalog.MovieSummary], error) {
		if genre != "" {
			id, err := resolveGenre(cmd, a, genre)
			if err != nil {
				return nil, err
			}
			q.GenreID = id
		}
		if ignored := q.IgnoredFilters(); len(ignored) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "note: text search ignores %s; drop the query to filter\n", strings.Join(ignored, ", "))
		}
		return a.catalog.Search(cmd.Context(), q)
	})
}

// resolveGenre accepts a genre id or a genre name.
func resolveGenre(cmd *cobra.Command, a *app, genre string) (int, error) {
	if id, err := strconv.Atoi(genre); err == nil {
		return id, nil
	}
	g, ok, err := a.catalog.GenreByName(cmd.Context(), genre)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("unknown genre %q (see 'marquee genres')", genre)
	}
	return g.ID, nil
}

func listMovies(cmd *cobra.Command, title string, fetch func(*app) (*catalog.Page[catalog.MovieSummary], error)) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	page, err := fetch(a)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), page)
	}
	printPage(cmd.OutOrStdout(), title, page)
	return nil
}

func runMovieCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid movie id %q", args[0])
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	movie, found, err := a.catalog.Movie(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("movie %d not found", id)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), movie)
	}
	printDetail(cmd.OutOrStdout(), movie)
	return nil
}

func runGenresCmd(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	genres, err := a.catalog.Genres(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), genres)
	}
	printGenres(cmd.OutOrStdout(), genres)
	return nil
}
