package pricing

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// SnapshotResource is the name of the daily price snapshot resource
const SnapshotResource = "AllPricesToday.json"

const (
	FinishNormal = "normal"
	FinishFoil   = "foil"
)

// Price is a retail price in USD, or unknown
type Price struct {
	Value float64
	Known bool
}

// KnownPrice creates a known price
func KnownPrice(v float64) Price {
	return Price{Value: v, Known: true}
}

// Format renders the price, using unknown for missing values
func (p Price) Format(unknown string) string {
	if !p.Known {
		return unknown
	}
	return strconv.FormatFloat(p.Value, 'f', -1, 64)
}

func (p Price) String() string {
	return p.Format("unknown")
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Known {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// Prices is the result of a lookup. Vendor is empty when no listing was found.
type Prices struct {
	Vendor string `json:"vendor,omitempty"`
	Normal Price  `json:"normal"`
	Foil   Price  `json:"foil"`
}

// Snapshot maps card uuids to their raw price records. Records stay raw so that
// the key order of the source document is preserved.
type Snapshot struct {
	records map[string]json.RawMessage
}

// LoadSnapshot decodes an AllPricesToday document
func LoadSnapshot(data []byte) (*Snapshot, error) {
	var doc struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode price snapshot: %w", err)
	}
	if doc.Data == nil {
		doc.Data = make(map[string]json.RawMessage)
	}
	return &Snapshot{records: doc.Data}, nil
}

// Len returns the number of cards with a price record
func (s *Snapshot) Len() int {
	return len(s.records)
}

// Record returns the raw price record for a card
func (s *Snapshot) Record(uuid string) (json.RawMessage, bool) {
	raw, ok := s.records[uuid]
	return raw, ok
}

// Policy selects where prices are read from within a record
type Policy struct {
	Medium  string
	Vendors []string
	Listing string
}

// DefaultPolicy reads paper retail prices, TCGplayer first, then Card Kingdom
func DefaultPolicy() Policy {
	return Policy{
		Medium:  "paper",
		Vendors: []string{"tcgplayer", "cardkingdom"},
		Listing: "retail",
	}
}

// Resolver extracts normal and foil prices for cards
type Resolver struct {
	snapshot *Snapshot
	policy   Policy
}

func NewResolver(snapshot *Snapshot, policy Policy) *Resolver {
	return &Resolver{snapshot: snapshot, policy: policy}
}

// Resolve looks up the card's listing from the first vendor of the policy that has one, then
// takes the first price point of each finish. Any missing level yields unknown prices.
func (r *Resolver) Resolve(uuid string) Prices {
	raw, ok := r.snapshot.Record(uuid)
	if !ok {
		return Prices{}
	}

	medium := gjson.GetBytes(raw, gjson.Escape(r.policy.Medium))
	if !medium.IsObject() {
		return Prices{}
	}

	for _, vendor := range r.policy.Vendors {
		listing := medium.Get(gjson.Escape(vendor)).Get(gjson.Escape(r.policy.Listing))
		if !listing.IsObject() {
			continue
		}
		return Prices{
			Vendor: vendor,
			Normal: firstPrice(listing.Get(FinishNormal)),
			Foil:   firstPrice(listing.Get(FinishFoil)),
		}
	}

	return Prices{}
}

// firstPrice returns the first value of a {date: price} object in document order
func firstPrice(finish gjson.Result) Price {
	var price Price
	if !finish.IsObject() {
		return price
	}
	finish.ForEach(func(_, value gjson.Result) bool {
		if value.Type == gjson.Number {
			price = KnownPrice(value.Float())
		}
		return false
	})
	return price
}
