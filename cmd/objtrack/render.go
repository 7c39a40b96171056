package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/cory-johannsen/objtrack/internal/game/objective"
	"github.com/cory-johannsen/objtrack/internal/game/resolve"
	"github.com/cory-johannsen/objtrack/internal/game/shop"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7FF"))

	bandStyles = map[resolve.Band]lipgloss.Style{
		resolve.BandNear:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		resolve.BandMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		resolve.BandFar:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")),
	}
)

func renderItems(w io.Writer, query string, names []string) {
	if len(names) == 0 {
		fmt.Fprintf(w, "no items match %q\n", query)
		return
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d items match %q", len(names), query)))
	for _, n := range names {
		fmt.Fprintf(w, "  %s\n", n)
	}
}

func stockLabel(stock int) string {
	if stock == shop.UnlimitedStock {
		return "unlimited"
	}
	return humanize.Comma(int64(stock))
}

func renderShops(w io.Writer, item string, shops []*shop.Shop) {
	if len(shops) == 0 {
		fmt.Fprintf(w, "no shop sells %q\n", item)
		return
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s is sold by %d %s", item, len(shops), plural(len(shops), "shop", "shops"))))
	for _, s := range shops {
		listing, _ := s.Item(item)
		where := s.Location
		if s.Point != nil {
			where += " " + s.Point.String()
		}
		fmt.Fprintf(w, "  %-28s %10s gp  stock %-9s %s\n",
			s.Name, humanize.Comma(int64(listing.Price)), stockLabel(listing.Stock), dimStyle.Render(where))
	}
}

func renderObjective(w io.Writer, o objective.Objective) {
	marker := "[ ]"
	if o.Active {
		marker = activeStyle.Render("[x]")
	}
	line := fmt.Sprintf("%s %-20s %-8s %s", marker, o.ID, o.Type, o.Task)
	if o.LocationName != "" {
		line += dimStyle.Render(" @ " + o.LocationName)
	}
	if o.Location != nil {
		line += dimStyle.Render(fmt.Sprintf(" %s region %d", o.Location, o.RegionID))
	}
	fmt.Fprintln(w, line)
}

func renderObjectives(w io.Writer, objs []objective.Objective) {
	if len(objs) == 0 {
		fmt.Fprintln(w, "no objectives")
		return
	}
	for _, o := range objs {
		renderObjective(w, o)
	}
}

// buyReport is what plan prints about a BUY objective.
type buyReport struct {
	Objective objective.Objective
	Best      *objective.ShopLocation
	Cheapest  *objective.ShopLocation
	Stocked   []objective.ShopLocation
	TotalCost int
}

func renderBuy(w io.Writer, r buyReport) {
	renderObjective(w, r.Objective)
	for _, q := range r.Objective.ShopQuotes {
		fmt.Fprintf(w, "    %s  stock %s\n", q.Summary(), stockLabel(q.Stock))
	}
	if r.Best != nil {
		fmt.Fprintf(w, "  best:     %s\n", r.Best.Summary())
	}
	if r.Cheapest != nil {
		fmt.Fprintf(w, "  cheapest: %s\n", r.Cheapest.Summary())
	}
	if r.Objective.Quantity != nil {
		names := make([]string, len(r.Stocked))
		for i, q := range r.Stocked {
			names[i] = q.ShopName
		}
		stocked := "none"
		if len(names) > 0 {
			stocked = strings.Join(names, ", ")
		}
		fmt.Fprintf(w, "  enough stock: %s\n", stocked)
		fmt.Fprintf(w, "  total cost:   %s gp\n", humanize.Comma(int64(r.TotalCost)))
	}
}

func renderGuidance(w io.Writer, g resolve.Guidance) {
	style := bandStyles[g.Band]
	fmt.Fprintf(w, "%s\n  %s tiles %s %s\n",
		titleStyle.Render(g.Objective.Task),
		style.Render(fmt.Sprintf("%.0f", g.Distance)),
		g.Compass,
		dimStyle.Render(fmt.Sprintf("to %s (%s)", g.Target, g.Band)),
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
