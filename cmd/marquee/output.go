package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/vmunix/marquee/internal/catalog"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}

func formatYear(m *catalog.MovieSummary) string {
	if y := m.Year(); y != 0 {
		return fmt.Sprintf("%d", y)
	}
	return "----"
}

func genreNames(genres []catalog.Genre) string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

func printPage(w io.Writer, title string, p *catalog.Page[catalog.MovieSummary]) {
	if len(p.Results) == 0 {
		fmt.Fprintln(w, "No movies found")
		return
	}

	fmt.Fprintf(w, "%s (page %d of %d, %d total):\n\n", title, p.Page, p.TotalPages, p.TotalResults)
	fmt.Fprintf(w, "  %8s │ %-40s │ %4s │ %6s │ %s\n", "ID", "TITLE", "YEAR", "RATING", "GENRES")
	fmt.Fprintln(w, "──────────┼──────────────────────────────────────────┼──────┼────────┼────────────────────")
	for i := range p.Results {
		m := &p.Results[i]
		fmt.Fprintf(w, "  %8d │ %-40s │ %4s │ %6.1f │ %s\n",
			m.ID, truncate(m.Title, 40), formatYear(m), m.Rating, truncate(genreNames(m.Genres), 30))
	}
}

func printDetail(w io.Writer, d *catalog.MovieDetail) {
	fmt.Fprintf(w, "%s (%s)\n", d.Title, formatYear(&d.MovieSummary))
	if d.OriginalTitle != "" && d.OriginalTitle != d.Title {
		fmt.Fprintf(w, "  Original title: %s\n", d.OriginalTitle)
	}
	fmt.Fprintf(w, "  ID:       %d\n", d.ID)
	fmt.Fprintf(w, "  Status:   %s\n", d.Status)
	if d.Runtime > 0 {
		fmt.Fprintf(w, "  Runtime:  %dh %02dm\n", d.Runtime/60, d.Runtime%60)
	}
	fmt.Fprintf(w, "  Rating:   %.1f (%d votes)\n", d.Rating, d.VoteCount)
	if len(d.Genres) > 0 {
		fmt.Fprintf(w, "  Genres:   %s\n", genreNames(d.Genres))
	}
	if url := d.PosterURL("w500"); url != "" {
		fmt.Fprintf(w, "  Poster:   %s\n", url)
	}
	if d.Overview != "" {
		fmt.Fprintf(w, "\n  %s\n", d.Overview)
	}

	if len(d.Cast) > 0 {
		fmt.Fprintln(w, "\nCast:")
		for _, c := range d.Cast[:min(len(d.Cast), 10)] {
			fmt.Fprintf(w, "  %-30s %s\n", truncate(c.Name, 30), c.Character)
		}
	}

	var directors []string
	for _, c := range d.Crew {
		if c.Job == "Director" {
			directors = append(directors, c.Name)
		}
	}
	if len(directors) > 0 {
		fmt.Fprintf(w, "\nDirected by %s\n", strings.Join(directors, ", "))
	}
}

func printGenres(w io.Writer, genres []catalog.Genre) {
	if len(genres) == 0 {
		fmt.Fprintln(w, "No genres found")
		return
	}
	fmt.Fprintf(w, "  %6s │ %s\n", "ID", "NAME")
	fmt.Fprintln(w, "────────┼────────────────────")
	for _, g := range genres {
		fmt.Fprintf(w, "  %6d │ %s\n", g.ID, g.Name)
	}
}
