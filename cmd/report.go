package cmd

import (
	"context"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/arcanaland/setsheet/internal/card"
	"github.com/arcanaland/setsheet/internal/catalog"
	"github.com/arcanaland/setsheet/internal/config"
	"github.com/arcanaland/setsheet/internal/fetch"
	"github.com/arcanaland/setsheet/internal/pricing"
	"github.com/arcanaland/setsheet/internal/report"
)

// reportRequest holds the root command flags
type reportRequest struct {
	Name      string
	PrintSets bool
	CardLimit int
	Output    string
	NoCache   bool
	NoPersist bool
}

func (r reportRequest) fetchOptions() fetch.Options {
	return fetch.Options{UseCache: !r.NoCache, Persist: !r.NoPersist}
}

func (r reportRequest) outputPath() string {
	if r.Output != "" {
		return r.Output
	}
	return r.Name + ".xlsx"
}

// newHTTPClient applies the configured timeout, zero meaning none
func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.API.Timeout.Duration}
}

func newFetcher(cfg *config.Config, client *http.Client, logger *zap.Logger) *fetch.Fetcher {
	return fetch.NewFetcher(client, fetch.FetcherOptions{
		BaseURL:   cfg.API.BaseURL,
		CacheDir:  cfg.GetCacheDir(),
		UserAgent: cfg.API.UserAgent,
	}, logger)
}

// generate runs the whole pipeline: sets, cards, prices, then the spreadsheet
func generate(ctx context.Context, cfg *config.Config, logger *zap.Logger, out io.Writer, req reportRequest) error {
	con := newConsole(out)
	client := newHTTPClient(cfg)
	fetcher := newFetcher(cfg, client, logger)
	opts := req.fetchOptions()

	if req.PrintSets {
		con.println("Printing list of sets.")
	} else {
		con.println("Making spreadsheet for %s", req.Name)
	}

	con.step("Loading sets")
	sets, cached, err := catalog.LoadSets(ctx, fetcher, opts)
	if err != nil {
		con.failed()
		return err
	}
	con.done(cached)

	if req.PrintSets {
		printSets(con, catalog.Expansions(sets))
		return nil
	}

	selection := catalog.ResolveSets(sets, req.Name)
	if selection.Len() == 0 {
		con.println("No sets found for '%s'", req.Name)
		return nil
	}
	con.println("Found %d sets for %s: %s", selection.Len(), req.Name, strings.Join(selection.Names(), ", "))

	aggregator := catalog.NewAggregator(fetcher, opts, logger)
	aggregator.OnSet = func(code string, count int, fromCache bool) {
		set, _ := selection.Get(code)
		con.step("Loaded %d cards for %s", count, set.Name)
		con.done(fromCache)
	}
	cards, err := aggregator.AggregateCards(ctx, selection.Codes())
	if err != nil {
		return err
	}

	con.step("Loading prices")
	res, err := fetcher.Fetch(ctx, pricing.SnapshotResource, opts)
	if err != nil {
		con.failed()
		return err
	}
	snapshot, err := pricing.LoadSnapshot(res.Data)
	if err != nil {
		con.failed()
		return err
	}
	con.done(res.FromCache)
	logger.Debug("Loaded price snapshot", zap.Int("cards", snapshot.Len()))

	resolver := pricing.NewResolver(snapshot, pricing.Policy{
		Medium:  cfg.Prices.Medium,
		Vendors: cfg.Prices.Vendors,
		Listing: cfg.Prices.Listing,
	})
	images := fetch.NewImageClient(client, cfg.API.ImageURL, cfg.API.UserAgent, cfg.API.ImageRate, logger)
	renderer := report.NewRenderer(resolver, images, report.Options{
		RowHeight:       cfg.Report.RowHeight,
		ThumbnailHeight: cfg.Report.ThumbnailHeight,
		UnknownPrice:    cfg.Report.UnknownPrice,
		Progress:        con.progress,
	}, logger)

	dest := req.outputPath()
	con.step("Processing cards")
	if err := renderer.Render(ctx, dest, cards, selection, req.CardLimit); err != nil {
		con.failed()
		return err
	}
	con.done(false)
	con.println("Wrote %s", dest)

	return nil
}

// printSets lists expansions as name, block and release date columns
func printSets(con *console, sets []card.Set) {
	width := 40
	if termWidth := con.width(); termWidth > 0 && termWidth < 2*width+12 {
		width = max((termWidth-12)/2, 10)
	}
	for _, s := range sets {
		con.println("%-*s %-*s %s", width, s.Name, width, s.Block, s.ReleaseDate)
	}
}
