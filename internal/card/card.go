package card

import "strings"

// Card represents a single printing as listed in an MTGJSON set file.
// Fields not needed for the report (foreignData, rulings, legalities...) are never decoded.
type Card struct {
	UUID        string      `json:"uuid"`
	Name        string      `json:"name"`
	Rarity      string      `json:"rarity"`
	Colors      []string    `json:"colors"`
	SetCode     string      `json:"setCode"`
	EDHRECRank  *int        `json:"edhrecRank,omitempty"`
	Identifiers Identifiers `json:"identifiers"`
}

// Identifiers holds the external ids of a card
type Identifiers struct {
	ScryfallID string `json:"scryfallId"`
}

// HasRank reports whether the card carries popularity data
func (c Card) HasRank() bool {
	return c.EDHRECRank != nil
}

// ColorString joins the card colors with a single space (e.g. "U R")
func (c Card) ColorString() string {
	return strings.Join(c.Colors, " ")
}

// Set represents an entry of SetList.json.
// The large auxiliary fields (decks, languages, sealedProduct, translations) are left out
// of the struct and so are dropped at decode time.
type Set struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Block       string `json:"block,omitempty"`
	Type        string `json:"type"`
	ReleaseDate string `json:"releaseDate"`
}

// SetTypeExpansion is the only set type eligible for reports
const SetTypeExpansion = "expansion"

// IsExpansion reports whether the set is a regular expansion
func (s Set) IsExpansion() bool {
	return s.Type == SetTypeExpansion
}

// SetList is the envelope of SetList.json
type SetList struct {
	Data []Set `json:"data"`
}

// SetFile is the envelope of a per-set file such as LEA.json
type SetFile struct {
	Data struct {
		Cards []Card `json:"cards"`
	} `json:"data"`
}
