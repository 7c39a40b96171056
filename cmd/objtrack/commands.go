package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/google/subcommands"

	"github.com/cory-johannsen/objtrack/internal/game/objective"
	"github.com/cory-johannsen/objtrack/internal/game/world"
	"github.com/cory-johannsen/objtrack/internal/tracker"
)

// app is shared by every subcommand. The tracker is built by start the first
// time a catalog command runs, so help and flag listings never touch the
// catalog source.
type app struct {
	tracker *tracker.Tracker
	start   func(context.Context) (*tracker.Tracker, error)
	out     io.Writer
	warn    io.Writer
}

// ensure builds the tracker once.
//
// Postcondition: a.tracker is non-nil when ensure returns nil.
func (a *app) ensure(ctx context.Context) error {
	if a.tracker != nil {
		return nil
	}
	if a.start == nil {
		return errors.New("tracker not configured")
	}
	tr, err := a.start(ctx)
	if err != nil {
		return fmt.Errorf("starting tracker: %w", err)
	}
	a.tracker = tr
	if tr.CatalogErr != nil && a.warn != nil {
		fmt.Fprintln(a.warn, dimStyle.Render(fmt.Sprintf("warning: shop catalog unavailable: %v", tr.CatalogErr)))
	}
	return nil
}

// close releases the tracker if one was built.
func (a *app) close() error {
	if a.tracker == nil {
		return nil
	}
	return a.tracker.Close()
}

func (a *app) commands() []subcommands.Command {
	return []subcommands.Command{
		&searchCmd{app: a},
		&shopsCmd{app: a},
		&planCmd{app: a},
		&listCmd{app: a},
		&navigateCmd{app: a},
	}
}

func (a *app) fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(a.out, "error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// pointFlag is a flag.Value holding an optional "x,y[,plane]" point.
type pointFlag struct {
	p *world.Point
}

func (f *pointFlag) String() string {
	if f.p == nil {
		return ""
	}
	return f.p.String()
}

func (f *pointFlag) Set(s string) error {
	p, err := world.ParsePoint(s)
	if err != nil {
		return err
	}
	f.p = &p
	return nil
}

type searchCmd struct {
	*app
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "list catalog items whose name contains a query" }
func (*searchCmd) Usage() string {
	return "search <query>:\n  Case-insensitive substring search over every item sold.\n"
}
func (*searchCmd) SetFlags(*flag.FlagSet) {}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return subcommands.ExitUsageError
	}
	if err := c.ensure(ctx); err != nil {
		return c.fail("%v", err)
	}
	query := strings.Join(f.Args(), " ")
	renderItems(c.out, query, c.tracker.Catalog.SearchItems(query))
	return subcommands.ExitSuccess
}

type shopsCmd struct {
	*app
}

func (*shopsCmd) Name() string     { return "shops" }
func (*shopsCmd) Synopsis() string { return "list the shops selling an item" }
func (*shopsCmd) Usage() string {
	return "shops <item>:\n  Every shop listing the item, in catalog order, with price and stock.\n"
}
func (*shopsCmd) SetFlags(*flag.FlagSet) {}

func (c *shopsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return subcommands.ExitUsageError
	}
	if err := c.ensure(ctx); err != nil {
		return c.fail("%v", err)
	}
	item := strings.Join(f.Args(), " ")
	renderShops(c.out, item, c.tracker.Catalog.ShopsForItem(item))
	return subcommands.ExitSuccess
}

type planCmd struct {
	*app
	quantity int
	shopID   string
	at       pointFlag
	player   pointFlag
}

func (*planCmd) Name() string     { return "plan" }
func (*planCmd) Synopsis() string { return "plan a BUY objective for an item" }
func (*planCmd) Usage() string {
	return "plan [-qty n] [-shop id] [-at x,y,plane] [-player x,y,plane] <item>:\n  Quote every shop selling the item and pick the best one.\n"
}

func (c *planCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.quantity, "qty", 0, "quantity to buy (0 = unspecified)")
	f.StringVar(&c.shopID, "shop", "", "restrict to one shop id")
	f.Var(&c.at, "at", "explicit objective location x,y[,plane]")
	f.Var(&c.player, "player", "player position x,y[,plane] used to choose the best shop")
}

func (c *planCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return subcommands.ExitUsageError
	}
	if err := c.ensure(ctx); err != nil {
		return c.fail("%v", err)
	}
	req := objective.BuyRequest{
		ItemName: strings.Join(f.Args(), " "),
		ShopID:   c.shopID,
		Location: c.at.p,
	}
	if c.quantity != 0 {
		q := c.quantity
		req.Quantity = &q
	}

	o, err := c.tracker.Planner.PlanBuy(req)
	if err != nil {
		return c.fail("%v", err)
	}
	c.tracker.Objectives.Add(o)
	renderBuy(c.out, report(c.tracker, o, c.player.p))
	return subcommands.ExitSuccess
}

// report gathers what the resolvers say about a BUY objective.
func report(tr *tracker.Tracker, o objective.Objective, player *world.Point) buyReport {
	return buyReport{
		Objective: o,
		Best:      tr.Locations.BestShopLocation(o, player),
		Cheapest:  tr.Prices.CheapestShop(o.ShopQuotes),
		Stocked:   tr.Prices.ShopsWithSufficientStock(o),
		TotalCost: tr.Prices.CheapestTotalCost(o),
	}
}

type listCmd struct {
	*app
	activeOnly bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list tracked objectives" }
func (*listCmd) Usage() string {
	return "list [-active]:\n  Tracked objectives ordered by id.\n"
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.activeOnly, "active", false, "only active objectives")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if err := c.ensure(ctx); err != nil {
		return c.fail("%v", err)
	}
	if c.activeOnly {
		renderObjectives(c.out, c.tracker.Objectives.Active())
	} else {
		renderObjectives(c.out, c.tracker.Objectives.All())
	}
	return subcommands.ExitSuccess
}

type navigateCmd struct {
	*app
	player   pointFlag
	activate string
	buy      string
	quantity int
}

func (*navigateCmd) Name() string     { return "navigate" }
func (*navigateCmd) Synopsis() string { return "point the player at the closest active objective" }
func (*navigateCmd) Usage() string {
	return "navigate -player x,y[,plane] [-activate id,...] [-buy item [-qty n]]:\n  Distance, compass heading and band for the closest active objective.\n"
}

func (c *navigateCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.player, "player", "player position x,y[,plane] (required)")
	f.StringVar(&c.activate, "activate", "", "comma-separated objective ids to activate")
	f.StringVar(&c.buy, "buy", "", "plan and activate a BUY objective for this item")
	f.IntVar(&c.quantity, "qty", 0, "quantity for -buy (0 = unspecified)")
}

var errNoPlayer = errors.New("-player is required")

func (c *navigateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.player.p == nil {
		return c.fail("%v", errNoPlayer)
	}
	if err := c.ensure(ctx); err != nil {
		return c.fail("%v", err)
	}
	if c.activate != "" {
		for _, id := range strings.Split(c.activate, ",") {
			id = strings.TrimSpace(id)
			o, ok := c.tracker.Objectives.Get(id)
			if !ok {
				return c.fail("unknown objective %q", id)
			}
			if !o.Active {
				c.tracker.Objectives.Toggle(id)
			}
		}
	}
	if c.buy != "" {
		req := objective.BuyRequest{ItemName: c.buy}
		if c.quantity != 0 {
			q := c.quantity
			req.Quantity = &q
		}
		o, err := c.tracker.Planner.PlanBuy(req)
		if err != nil {
			return c.fail("%v", err)
		}
		c.tracker.Objectives.Add(o.WithActive(true))
	}

	g, ok := c.tracker.Navigator.Closest(c.tracker.Objectives.Active(), *c.player.p)
	if !ok {
		fmt.Fprintln(c.out, "no active objective on this plane")
		return subcommands.ExitSuccess
	}
	renderGuidance(c.out, g)
	return subcommands.ExitSuccess
}
