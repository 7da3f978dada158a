package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/petflix/petflix/catalog"
	"github.com/petflix/petflix/color"
	"github.com/petflix/petflix/enrich"
	"github.com/petflix/petflix/history"
	"github.com/petflix/petflix/icon"
	"github.com/petflix/petflix/paginate"
	"github.com/petflix/petflix/source"
	"github.com/petflix/petflix/style"
	"github.com/petflix/petflix/util"
	"github.com/samber/lo"
)

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func header(title string) string {
	return fmt.Sprintf("%s %s", style.Fg(color.Purple)("▇▇▇"), style.Bold(title))
}

func badges(r enrich.Record) string {
	parts := lo.Compact([]string{r.Quality, r.Lang})
	if r.EpisodeTotal != "" && r.Kind != "movie" {
		parts = append(parts, r.EpisodeTotal)
	}
	if len(parts) == 0 {
		return ""
	}
	return style.Faint("[" + strings.Join(parts, " · ") + "]")
}

func renderListing(w io.Writer, title string, listing *catalog.Listing) {
	width := util.TerminalWidth(100)

	_, _ = fmt.Fprintln(w, header(title))
	_, _ = fmt.Fprintln(w)

	pad := len(strconv.Itoa(len(listing.Items)))
	for i, item := range listing.Items {
		line := fmt.Sprintf(
			"%*d. %s %s",
			pad, i+1,
			icon.Get(icon.ForKind(string(item.Kind))),
			style.Bold(item.String()),
		)
		if item.OriginalTitle != "" && item.OriginalTitle != item.Title {
			line += " " + style.Faint(item.OriginalTitle)
		}
		if b := badges(item.Record); b != "" {
			line += " " + b
		}
		if item.Score > 0 {
			line += " " + style.Fg(color.Yellow)(icon.Get(icon.Star)+strconv.Itoa(item.Score))
		}

		_, _ = fmt.Fprintln(w, truncate.StringWithTail(line, uint(width), "…"))
		_, _ = fmt.Fprintln(w, indent.String(style.Faint(item.ID), uint(pad+2)))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, renderPages(listing.View))
}

func renderPages(v paginate.View) string {
	numbers := paginate.Numbers(v.Page, v.TotalPages, paginate.DefaultMaxDelta)

	cells := lo.Map(numbers, func(n int, _ int) string {
		switch n {
		case paginate.Ellipsis:
			return style.Faint("…")
		case v.Page:
			return style.New().Bold(true).Foreground(color.HiCyan).Render("[" + strconv.Itoa(n) + "]")
		default:
			return strconv.Itoa(n)
		}
	})

	prev, next := style.Faint("‹"), style.Faint("›")
	if v.HasPrev() {
		prev = "‹"
	}
	if v.HasNext() {
		next = "›"
	}

	total := strconv.Itoa(v.TotalPages)
	if v.Estimated {
		total = "~" + total
	}

	return fmt.Sprintf(
		"%s %s %s %s  %s",
		icon.Get(icon.Page),
		prev,
		strings.Join(cells, " "),
		next,
		style.Faint(fmt.Sprintf("page %d of %s", v.Page, total)),
	)
}

func renderDetail(w io.Writer, d *catalog.DetailView) {
	width := util.TerminalWidth(100)
	field := func(name, value string) {
		if value == "" {
			return
		}
		_, _ = fmt.Fprintf(w, "  %s %s\n", style.Faint(fmt.Sprintf("%-12s", name)), value)
	}
	tags := func(list []string) string {
		return strings.Join(list, ", ")
	}

	_, _ = fmt.Fprintln(w, header(d.String()))
	_, _ = fmt.Fprintln(w)

	field("Original", d.OriginalTitle)
	field("Kind", string(d.Kind))
	field("Episodes", d.EpisodeTotal)
	field("Quality", strings.TrimSpace(d.Quality+" "+d.Lang))
	field("Countries", tags(lo.Map(d.Countries, func(t source.Tag, _ int) string { return t.Name })))
	field("Categories", tags(lo.Map(d.Categories, func(t source.Tag, _ int) string { return t.Name })))
	field("Poster", d.PosterURL)
	field("Backdrop", d.BackdropURL)

	if meta, ok := d.Metadata.Get(); ok && meta.VoteAverage > 0 {
		field("Rating", fmt.Sprintf("%s %.1f", icon.Get(icon.Star), meta.VoteAverage))
	}

	if d.Description != "" {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, indent.String(wordwrap.String(d.Description, util.Max(20, width-4)), 2))
	}

	for _, server := range d.Servers {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "  %s %s\n", style.Fg(color.Cyan)(server.Name), style.Faint(util.Quantify(len(server.Episodes), "episode", "episodes")))

		names := lo.Map(server.Episodes, func(e *source.Episode, _ int) string {
			return e.String()
		})
		_, _ = fmt.Fprintln(w, indent.String(wordwrap.String(strings.Join(names, "  "), util.Max(20, width-4)), 4))
	}
}

func renderHistory(w io.Writer, entries []*history.Entry) {
	_, _ = fmt.Fprintln(w, header("Continue watching"))
	_, _ = fmt.Fprintln(w)

	for _, e := range entries {
		progress := style.Faint("opened")
		if !e.HasEmbed && e.Duration > 0 {
			progress = style.Fg(color.Green)(fmt.Sprintf("%.0f%%", e.WatchedPercentage))
		}

		title := lo.CoalesceOrEmpty(e.Title, e.ItemID)
		_, _ = fmt.Fprintf(
			w,
			"  %s %s %s %s  %s\n",
			icon.Get(icon.History),
			style.Bold(title),
			style.Faint(e.EpisodeID),
			progress,
			style.Faint(e.UpdatedAt.Local().Format("2006-01-02 15:04")),
		)
	}
}
