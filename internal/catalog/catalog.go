package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/arcanaland/setsheet/internal/card"
	"github.com/arcanaland/setsheet/internal/fetch"
	"go.uber.org/zap"
)

// SetListResource is the name of the set catalog resource
const SetListResource = "SetList.json"

// Selection is the ordered set of expansions matching a query, keyed by set code
type Selection struct {
	codes []string
	sets  map[string]card.Set
}

// Codes returns the matched set codes in catalog order
func (s *Selection) Codes() []string {
	return append([]string(nil), s.codes...)
}

// Sets returns the matched sets in catalog order
func (s *Selection) Sets() []card.Set {
	sets := make([]card.Set, 0, len(s.codes))
	for _, code := range s.codes {
		sets = append(sets, s.sets[code])
	}
	return sets
}

// Get looks up a matched set by code
func (s *Selection) Get(code string) (card.Set, bool) {
	set, ok := s.sets[code]
	return set, ok
}

func (s *Selection) Len() int {
	return len(s.codes)
}

// Names returns the matched set names in catalog order
func (s *Selection) Names() []string {
	names := make([]string, 0, len(s.codes))
	for _, code := range s.codes {
		names = append(names, s.sets[code].Name)
	}
	return names
}

// Expansions returns the sets eligible for a report, in catalog order
func Expansions(sets []card.Set) []card.Set {
	var out []card.Set
	for _, s := range sets {
		if s.IsExpansion() {
			out = append(out, s)
		}
	}
	return out
}

// ResolveSets selects the expansions whose name or block equals query, ignoring case.
// No match gives an empty selection.
func ResolveSets(sets []card.Set, query string) *Selection {
	selection := &Selection{sets: make(map[string]card.Set)}

	for _, s := range Expansions(sets) {
		if !matches(s, query) {
			continue
		}
		if _, dup := selection.sets[s.Code]; !dup {
			selection.codes = append(selection.codes, s.Code)
		}
		selection.sets[s.Code] = s
	}

	return selection
}

func matches(s card.Set, query string) bool {
	if strings.EqualFold(s.Name, query) {
		return true
	}
	return s.Block != "" && strings.EqualFold(s.Block, query)
}

// Source loads JSON resources by name
type Source interface {
	Decode(ctx context.Context, name string, opts fetch.Options, v any) (*fetch.Resource, error)
}

// LoadSets loads the full set catalog
func LoadSets(ctx context.Context, src Source, opts fetch.Options) ([]card.Set, bool, error) {
	var list card.SetList
	res, err := src.Decode(ctx, SetListResource, opts, &list)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load set list: %w", err)
	}
	return list.Data, res.FromCache, nil
}

// Aggregator concatenates the card lists of several sets
type Aggregator struct {
	src    Source
	opts   fetch.Options
	logger *zap.Logger

	// OnSet, when set, is called after each set's cards are loaded
	OnSet func(code string, count int, fromCache bool)
}

func NewAggregator(src Source, opts fetch.Options, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{src: src, opts: opts, logger: logger}
}

// AggregateCards loads each set's cards in the order of codes and appends them,
// preserving the order within each set.
func (a *Aggregator) AggregateCards(ctx context.Context, codes []string) ([]card.Card, error) {
	var cards []card.Card

	for _, code := range codes {
		var file card.SetFile
		res, err := a.src.Decode(ctx, code+".json", a.opts, &file)
		if err != nil {
			return nil, fmt.Errorf("failed to load cards for %s: %w", code, err)
		}

		cards = append(cards, file.Data.Cards...)

		a.logger.Debug("Loaded set cards",
			zap.String("set", code),
			zap.Int("cards", len(file.Data.Cards)),
			zap.Bool("cached", res.FromCache))

		if a.OnSet != nil {
			a.OnSet(code, len(file.Data.Cards), res.FromCache)
		}
	}

	return cards, nil
}
