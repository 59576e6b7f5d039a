// Package image holds the clients that turn a compiled instruction plus a
// source photograph into an enhanced output image.
package image

import "context"

// EditRequest carries everything a provider needs for one edit: the compiled
// instruction text, the transport options produced by compilation, and the
// raw source image.
type EditRequest struct {
	Instruction string
	Options     map[string]any
	ImageData   []byte
	ImageMIME   string
}

// EditResult is the normalized provider output. ImageData is always
// non-empty on success.
type EditResult struct {
	ImageData         []byte
	MIME              string
	ProviderRequestID string
}

// Editor performs a single image edit. Implementations are safe for
// concurrent use.
type Editor interface {
	Edit(ctx context.Context, req EditRequest) (*EditResult, error)
}

func optionString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	if s, ok := opts[key].(string); ok {
		return s
	}
	return ""
}
