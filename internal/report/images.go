package report

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

// shrinkImage scales the image down to height pixels, keeping its aspect ratio,
// and re-encodes it as JPEG. Images already small enough are returned unchanged.
func shrinkImage(data []byte, height uint) ([]byte, bool, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dy() <= int(height) {
		return data, false, nil
	}

	resized := resize.Resize(0, height, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 90}); err != nil {
		return nil, false, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), true, nil
}

// Pastel tints for the five colours of magic
var manaTints = map[string]string{
	"W": "#f8f6d8",
	"U": "#c1d7e9",
	"B": "#bab1ab",
	"R": "#e49977",
	"G": "#a3c095",
}

// colorFill averages the tints of the card colours in Lab space.
// ok is false for colourless cards.
func colorFill(colors []string) (hex string, ok bool) {
	var blended colorful.Color
	n := 0
	for _, code := range colors {
		tint, known := manaTints[code]
		if !known {
			continue
		}
		c, err := colorful.Hex(tint)
		if err != nil {
			continue
		}
		if n == 0 {
			blended = c
		} else {
			blended = blended.BlendLab(c, 1/float64(n+1))
		}
		n++
	}
	if n == 0 {
		return "", false
	}
	return blended.Clamped().Hex(), true
}
