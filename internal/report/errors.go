package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/arcanaland/setsheet/internal/card"
	"github.com/arcanaland/setsheet/internal/fetch"
	"github.com/arcanaland/setsheet/internal/pricing"
)

// RenderError aborts a report. It carries what is needed to diagnose the card that failed:
// the card record, its price lookup and the last image response received.
// Card is nil when the failure isn't tied to a card (e.g. saving the file).
type RenderError struct {
	Row    int
	Card   *card.Card
	Prices *pricing.Prices
	Image  *fetch.Image
	Err    error
}

func (e *RenderError) Error() string {
	if e.Card == nil {
		return fmt.Sprintf("failed to write report: %v", e.Err)
	}
	return fmt.Sprintf("failed on card %q (%s, row %d): %v", e.Card.Name, e.Card.UUID, e.Row, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Dump writes the full diagnostic context
func (e *RenderError) Dump(w io.Writer) {
	if e.Card != nil {
		fmt.Fprintln(w, "Failed on card:")
		dumpJSON(w, e.Card)
	}
	fmt.Fprintln(w, "Price:")
	if e.Prices != nil {
		dumpJSON(w, e.Prices)
	} else {
		fmt.Fprintln(w, "<not resolved>")
	}
	fmt.Fprintln(w, "Image:")
	fmt.Fprintln(w, e.Image.String())
}

func dumpJSON(w io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%+v\n", v)
		return
	}
	fmt.Fprintln(w, string(data))
}
