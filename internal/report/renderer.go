package report

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"

	"go.uber.org/zap"

	"github.com/arcanaland/setsheet/internal/card"
	"github.com/arcanaland/setsheet/internal/catalog"
	"github.com/arcanaland/setsheet/internal/fetch"
	"github.com/arcanaland/setsheet/internal/playability"
	"github.com/arcanaland/setsheet/internal/pricing"
)

// Column layout of the report
const (
	ColImage = iota
	ColName
	ColRarity
	ColColors
	ColPrice
	ColFoilPrice
	ColPlayability
	ColSet
	ColBlock
)

// Column describes one report column
type Column struct {
	Header string
	Width  float64
}

// Columns is the fixed report schema, indexed by the Col constants
var Columns = []Column{
	{Header: "Image", Width: 25},
	{Header: "Name", Width: 30},
	{Header: "Rarity", Width: 10},
	{Header: "Colors", Width: 10},
	{Header: "Price [USD]", Width: 10},
	{Header: "Foil Price [USD]", Width: 15},
	{Header: "Playability", Width: 10},
	{Header: "Set", Width: 30},
	{Header: "Block", Width: 25},
}

// DefaultRowHeight fits a small Scryfall thumbnail
const DefaultRowHeight = 200

// UnknownMarker is written in place of a missing price unless Options says otherwise
const UnknownMarker = "unknown"

// PriceLookup resolves the prices of a card by uuid
type PriceLookup interface {
	Resolve(uuid string) pricing.Prices
}

// ImageSource downloads the thumbnail of a card
type ImageSource interface {
	Fetch(ctx context.Context, scryfallID string) (*fetch.Image, error)
}

// Options tunes the rendering
type Options struct {
	// RowHeight of every card row, in points
	RowHeight float64
	// ThumbnailHeight shrinks images taller than this many pixels (0 keeps them as downloaded)
	ThumbnailHeight uint
	// UnknownPrice is written in place of missing prices, UnknownMarker when empty
	UnknownPrice string
	// Progress is called after each rendered row
	Progress func(done, total int)
	// NewSheet creates the output document, NewXLSXSheet by default
	NewSheet func() Sheet
}

// Renderer writes card reports
type Renderer struct {
	prices PriceLookup
	images ImageSource
	opts   Options
	logger *zap.Logger
}

func NewRenderer(prices PriceLookup, images ImageSource, opts Options, logger *zap.Logger) *Renderer {
	if opts.RowHeight <= 0 {
		opts.RowHeight = DefaultRowHeight
	}
	if opts.UnknownPrice == "" {
		opts.UnknownPrice = UnknownMarker
	}
	if opts.NewSheet == nil {
		opts.NewSheet = func() Sheet { return NewXLSXSheet() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{prices: prices, images: images, opts: opts, logger: logger}
}

// Render writes one row per card, in order, to a new document saved at dest.
// The Colors cell of a coloured card is filled with a blend of its mana tints.
// A positive limit stops after that many cards. The first card that fails aborts the
// report with a *RenderError and nothing is saved.
func (r *Renderer) Render(ctx context.Context, dest string, cards []card.Card, sets *catalog.Selection, limit int) error {
	ranker := playability.NewRanker(cards)

	total := len(cards)
	if limit > 0 && limit < total {
		total = limit
	}

	sheet := r.opts.NewSheet()
	defer func() { _ = sheet.Close() }()

	if err := writeHeader(sheet); err != nil {
		return &RenderError{Err: err}
	}

	b := &rowBuilder{Renderer: r, sheet: sheet, ranker: ranker, sets: sets}
	for i := 0; i < total; i++ {
		if err := b.write(ctx, i+1, cards[i]); err != nil {
			return err
		}
		if r.opts.Progress != nil {
			r.opts.Progress(i+1, total)
		}
	}

	if err := sheet.SaveAs(dest); err != nil {
		return &RenderError{Image: b.lastImage, Err: fmt.Errorf("failed to save %s: %w", dest, err)}
	}

	r.logger.Info("Report written", zap.String("path", dest), zap.Int("rows", total))
	return nil
}

func writeHeader(sheet Sheet) error {
	for col, column := range Columns {
		if err := sheet.SetColumnWidth(col, column.Width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", column.Header, err)
		}
		if err := sheet.WriteCell(0, col, column.Header); err != nil {
			return fmt.Errorf("failed to write header %s: %w", column.Header, err)
		}
	}
	return nil
}

// rowBuilder holds the per-report state while rows are written
type rowBuilder struct {
	*Renderer
	sheet     Sheet
	ranker    *playability.Ranker
	sets      *catalog.Selection
	lastImage *fetch.Image
}

func (b *rowBuilder) write(ctx context.Context, row int, c card.Card) error {
	var prices *pricing.Prices
	fail := func(err error) error {
		return &RenderError{Row: row, Card: &c, Prices: prices, Image: b.lastImage, Err: err}
	}

	resolved := b.prices.Resolve(c.UUID)
	prices = &resolved

	set, ok := b.sets.Get(c.SetCode)
	if !ok {
		return fail(fmt.Errorf("set %s is not part of the report", c.SetCode))
	}

	cells := []struct {
		col   int
		value any
	}{
		{ColName, c.Name},
		{ColRarity, c.Rarity},
		{ColColors, c.ColorString()},
		{ColPrice, b.priceValue(resolved.Normal)},
		{ColFoilPrice, b.priceValue(resolved.Foil)},
		{ColSet, set.Name},
		{ColBlock, set.Block},
	}

	if err := b.sheet.SetRowHeight(row, b.opts.RowHeight); err != nil {
		return fail(err)
	}
	for _, cell := range cells {
		if err := b.sheet.WriteCell(row, cell.col, cell.value); err != nil {
			return fail(fmt.Errorf("failed to write %s: %w", Columns[cell.col].Header, err))
		}
	}

	if hex, ok := colorFill(c.Colors); ok {
		if err := b.sheet.FillCell(row, ColColors, hex); err != nil {
			return fail(err)
		}
	}

	score, ranked, err := b.ranker.Score(c)
	if err != nil {
		return fail(err)
	}
	if ranked {
		if err := b.sheet.WriteCell(row, ColPlayability, playability.Format(score)); err != nil {
			return fail(err)
		}
	}

	img, err := b.images.Fetch(ctx, c.Identifiers.ScryfallID)
	if img != nil {
		b.lastImage = img
	}
	if err != nil {
		return fail(err)
	}

	data, ext := img.Data, imageExt(img.URL)
	if b.opts.ThumbnailHeight > 0 {
		shrunk, changed, err := shrinkImage(data, b.opts.ThumbnailHeight)
		if err != nil {
			return fail(err)
		}
		if changed {
			data, ext = shrunk, ".jpg"
		}
	}

	if err := b.sheet.EmbedImage(row, ColImage, ext, data); err != nil {
		return fail(fmt.Errorf("failed to embed image: %w", err))
	}

	return nil
}

func (b *rowBuilder) priceValue(p pricing.Price) any {
	if !p.Known {
		return b.opts.UnknownPrice
	}
	return p.Value
}

// imageExt takes the extension from the image URL, defaulting to .jpg
func imageExt(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ".jpg"
	}
	if ext := path.Ext(u.Path); ext != "" {
		return ext
	}
	return ".jpg"
}

// AsRenderError extracts a *RenderError from err's chain
func AsRenderError(err error) (*RenderError, bool) {
	var renderErr *RenderError
	if errors.As(err, &renderErr) {
		return renderErr, true
	}
	return nil, false
}
