package image

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"
)

func TestSyntheticEditIsDeterministic(t *testing.T) {
	editor := NewSyntheticEditor()
	req := EditRequest{Instruction: "marble pedestal", ImageData: []byte{1, 2, 3}}

	first, err := editor.Edit(context.Background(), req)
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	second, err := editor.Edit(context.Background(), req)
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if !bytes.Equal(first.ImageData, second.ImageData) {
		t.Fatal("same input produced different images")
	}
	if first.ProviderRequestID != second.ProviderRequestID {
		t.Fatalf("request ids differ: %q vs %q", first.ProviderRequestID, second.ProviderRequestID)
	}
	if !strings.HasPrefix(first.ProviderRequestID, "synthetic-") {
		t.Fatalf("ProviderRequestID = %q, want synthetic- prefix", first.ProviderRequestID)
	}
}

func TestSyntheticEditVariesWithInstruction(t *testing.T) {
	editor := NewSyntheticEditor()
	a, err := editor.Edit(context.Background(), EditRequest{Instruction: "a", ImageData: []byte{1}})
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	b, err := editor.Edit(context.Background(), EditRequest{Instruction: "b", ImageData: []byte{1}})
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if bytes.Equal(a.ImageData, b.ImageData) {
		t.Fatal("different instructions produced identical images")
	}
}

func TestSyntheticEditProducesValidPNG(t *testing.T) {
	editor := NewSyntheticEditor()
	result, err := editor.Edit(context.Background(), EditRequest{Instruction: "x", ImageData: []byte{1}})
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if result.MIME != "image/png" {
		t.Fatalf("MIME = %q, want image/png", result.MIME)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(result.ImageData))
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if cfg.Width != 1024 || cfg.Height != 1024 {
		t.Fatalf("dimensions = %dx%d, want 1024x1024", cfg.Width, cfg.Height)
	}
}

func TestSyntheticEditHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSyntheticEditor().Edit(ctx, EditRequest{Instruction: "x"}); err == nil {
		t.Fatal("Edit() with cancelled context expected error")
	}
}
