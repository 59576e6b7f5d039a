package image

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// SyntheticEditor renders a deterministic placeholder image derived from the
// instruction and source bytes. It backs development and test environments
// where no provider credentials are configured.
type SyntheticEditor struct {
	width  int
	height int
}

// NewSyntheticEditor creates an editor producing 1024x1024 placeholders.
func NewSyntheticEditor() *SyntheticEditor {
	return &SyntheticEditor{width: 1024, height: 1024}
}

// Edit fulfils the Editor interface without any network calls.
func (e *SyntheticEditor) Edit(ctx context.Context, req EditRequest) (*EditResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seed := syntheticSeed(req)
	data, err := renderPlaceholder(e.width, e.height, seed)
	if err != nil {
		return nil, fmt.Errorf("synthetic: render: %w", err)
	}
	return &EditResult{
		ImageData:         data,
		MIME:              "image/png",
		ProviderRequestID: "synthetic-" + seed[:12],
	}, nil
}

func syntheticSeed(req EditRequest) string {
	h := sha256.New()
	h.Write([]byte(req.Instruction))
	h.Write(req.ImageData)
	return hex.EncodeToString(h.Sum(nil))
}

func renderPlaceholder(width, height int, seed string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 1)
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripe := height / 12
	if stripe < 32 {
		stripe = 32
	}
	for y := 0; y < height; y += stripe * 2 {
		end := y + stripe
		if end > height {
			end = height
		}
		band := image.Rect(0, y, width, end)
		draw.Draw(img, band, &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if len(seed) < 6 {
		seed = "0f0f0f0f0f0f"
	}
	offset := (shift * 6) % (len(seed) - 5)
	pick := func(i int) uint8 {
		b, _ := hex.DecodeString(seed[offset+i : offset+i+2])
		if len(b) == 0 {
			return 0x40
		}
		return b[0]
	}
	return color.RGBA{R: pick(0), G: pick(2), B: pick(4), A: 0xFF}
}

var _ Editor = (*SyntheticEditor)(nil)
