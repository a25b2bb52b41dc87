package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSnapshot = `{
	"meta": {"date": "2024-05-02", "version": "5.2.2"},
	"data": {
		"both-vendors": {
			"paper": {
				"cardkingdom": {"retail": {"normal": {"2024-05-02": 99.0}}},
				"tcgplayer": {
					"buylist": {"normal": {"2024-05-02": 0.1}},
					"retail": {
						"normal": {"2024-05-02": 1.5, "2024-05-01": 9.9},
						"foil": {"2024-05-02": 4.25}
					}
				}
			}
		},
		"cardkingdom-only": {
			"paper": {
				"cardkingdom": {"retail": {"normal": {"2024-05-02": 0.35}}}
			}
		},
		"buylist-only": {
			"paper": {"tcgplayer": {"buylist": {"normal": {"2024-05-02": 0.1}}}}
		},
		"online-only": {
			"mtgo": {"cardhoarder": {"retail": {"normal": {"2024-05-02": 0.02}}}}
		},
		"empty-finish": {
			"paper": {"tcgplayer": {"retail": {"normal": {}, "foil": {"2024-05-02": 2}}}}
		},
		"tcgplayer-no-retail": {
			"paper": {
				"tcgplayer": {"buylist": {"foil": {"2024-05-02": 1}}},
				"cardkingdom": {"retail": {"foil": {"2024-05-02": 7.77}}}
			}
		}
	}
}`

func loadTestResolver(t *testing.T, policy Policy) *Resolver {
	t.Helper()
	snapshot, err := LoadSnapshot([]byte(testSnapshot))
	require.NoError(t, err)
	return NewResolver(snapshot, policy)
}

func TestLoadSnapshot(t *testing.T) {
	snapshot, err := LoadSnapshot([]byte(testSnapshot))
	require.NoError(t, err)
	assert.Equal(t, 6, snapshot.Len())

	_, ok := snapshot.Record("cardkingdom-only")
	assert.True(t, ok)

	empty, err := LoadSnapshot([]byte(`{"meta":{}}`))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	_, err = LoadSnapshot([]byte(`[1, 2`))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	r := loadTestResolver(t, DefaultPolicy())

	tests := []struct {
		name string
		uuid string
		want Prices
	}{
		{
			name: "tcgplayer preferred, first price point in document order",
			uuid: "both-vendors",
			want: Prices{Vendor: "tcgplayer", Normal: KnownPrice(1.5), Foil: KnownPrice(4.25)},
		},
		{
			name: "falls back to cardkingdom",
			uuid: "cardkingdom-only",
			want: Prices{Vendor: "cardkingdom", Normal: KnownPrice(0.35)},
		},
		{
			name: "vendor without retail listing falls through",
			uuid: "tcgplayer-no-retail",
			want: Prices{Vendor: "cardkingdom", Foil: KnownPrice(7.77)},
		},
		{
			name: "only buylist listings",
			uuid: "buylist-only",
			want: Prices{},
		},
		{
			name: "no paper prices",
			uuid: "online-only",
			want: Prices{},
		},
		{
			name: "empty finish is unknown",
			uuid: "empty-finish",
			want: Prices{Vendor: "tcgplayer", Foil: KnownPrice(2)},
		},
		{
			name: "card missing from snapshot",
			uuid: "no-such-card",
			want: Prices{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.uuid))
		})
	}
}

func TestResolve_CustomVendorOrder(t *testing.T) {
	r := loadTestResolver(t, Policy{
		Medium:  "paper",
		Vendors: []string{"cardkingdom", "tcgplayer"},
		Listing: "retail",
	})

	got := r.Resolve("both-vendors")
	assert.Equal(t, "cardkingdom", got.Vendor)
	assert.Equal(t, KnownPrice(99), got.Normal)
	assert.False(t, got.Foil.Known)
}

func TestPriceFormat(t *testing.T) {
	assert.Equal(t, "1.5", KnownPrice(1.5).Format(""))
	assert.Equal(t, "0", KnownPrice(0).Format("n/a"))
	assert.Equal(t, "n/a", Price{}.Format("n/a"))
	assert.Equal(t, "unknown", Price{}.String())
}

func TestPricesJSON(t *testing.T) {
	data, err := json.Marshal(Prices{Vendor: "tcgplayer", Normal: KnownPrice(1.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"vendor":"tcgplayer","normal":1.5,"foil":null}`, string(data))
}
