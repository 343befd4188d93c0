package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sydlexius/bassline/internal/discovery"
	"github.com/sydlexius/bassline/internal/snapshot"
)

const histogramWidth = 40

// printSummary writes the top artists table and a genre histogram. Color is
// only used when writing to a terminal.
func printSummary(w io.Writer, res *discovery.Result, top int, color bool) {
	fmt.Fprintf(w, "Scanned %s, matched %s, kept %s unique artists\n\n",
		humanize.Comma(int64(res.TotalScanned)),
		humanize.Comma(int64(res.TotalMatched)),
		humanize.Comma(int64(len(res.Artists))),
	)
	if len(res.Artists) == 0 {
		return
	}

	fmt.Fprintln(w, renderTopArtists(res.Artists, top, color))
	fmt.Fprintln(w)
	fmt.Fprint(w, renderGenreHistogram(snapshot.NewStore(res).GenreCounts(), color))
}

func renderTopArtists(artists []discovery.DiscoveredArtist, top int, color bool) string {
	if top > 0 && len(artists) > top {
		artists = artists[:top]
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if color {
		tw.SetStyle(table.StyleColoredBright)
	}
	tw.AppendHeader(table.Row{"#", "Artist", "Genre", "Fans", "Albums", "Score"})
	for i, a := range artists {
		tw.AppendRow(table.Row{
			i + 1,
			a.Name,
			a.Genre,
			humanize.Comma(int64(a.FanCount)),
			a.AlbumCount,
			a.MatchScore,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignRight},
	})
	return tw.Render()
}

// renderGenreHistogram draws one bar per genre scaled to the largest count.
func renderGenreHistogram(counts []snapshot.GenreCount, color bool) string {
	if len(counts) == 0 {
		return ""
	}
	maxCount := counts[0].Count
	nameWidth := 0
	for _, c := range counts {
		maxCount = max(maxCount, c.Count)
		nameWidth = max(nameWidth, utf8.RuneCountInString(c.Genre))
	}

	var b strings.Builder
	b.WriteString("Genres\n")
	for _, c := range counts {
		n := 0
		if maxCount > 0 {
			n = max(1, c.Count*histogramWidth/maxCount)
		}
		bar := strings.Repeat("█", n)
		if color {
			bar = text.FgCyan.Sprint(bar)
		}
		fmt.Fprintf(&b, "  %-*s %s %d\n", nameWidth, c.Genre, bar, c.Count)
	}
	return b.String()
}
