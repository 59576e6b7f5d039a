package upload

import (
	"bytes"
	"errors"
	"testing"

	"server/internal/domain"
)

func pngBytes() []byte {
	return []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
}

func jpegBytes() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
}

func webpBytes() []byte {
	b := []byte("RIFF....WEBPVP8 ")
	b[4], b[5], b[6], b[7] = 0x20, 0x00, 0x00, 0x00
	return b
}

func TestValidateAcceptsSupportedFormats(t *testing.T) {
	v := NewValidator(0)
	cases := []struct {
		name string
		data []byte
		mime string
	}{
		{"png", pngBytes(), "image/png"},
		{"jpeg", jpegBytes(), "image/jpeg"},
		{"webp", webpBytes(), "image/webp"},
	}
	for _, tc := range cases {
		img, err := v.Validate(tc.data, tc.name+".bin")
		if err != nil {
			t.Fatalf("%s: Validate() error = %v", tc.name, err)
		}
		if img.MIME != tc.mime {
			t.Fatalf("%s: MIME = %q, want %q", tc.name, img.MIME, tc.mime)
		}
	}
}

func TestValidateRejectsUnsupportedFormat(t *testing.T) {
	v := NewValidator(0)
	_, err := v.Validate([]byte("GIF89a...."), "anim.gif")
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("Validate() error = %v, want ErrConfiguration", err)
	}
}

func TestValidateRejectsEmptyPayload(t *testing.T) {
	v := NewValidator(0)
	if _, err := v.Validate(nil, "x.png"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("Validate() error = %v, want ErrConfiguration", err)
	}
}

func TestValidateEnforcesSizeLimit(t *testing.T) {
	v := NewValidator(16)
	big := append(pngBytes(), bytes.Repeat([]byte{0}, 32)...)
	if _, err := v.Validate(big, "big.png"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("Validate() error = %v, want ErrConfiguration", err)
	}
	if v.MaxBytes() != 16 {
		t.Fatalf("MaxBytes() = %d, want 16", v.MaxBytes())
	}
}

func TestValidatorDefaultLimit(t *testing.T) {
	if got := NewValidator(0).MaxBytes(); got != DefaultMaxBytes {
		t.Fatalf("MaxBytes() = %d, want %d", got, DefaultMaxBytes)
	}
}

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"":           ".png",
	}
	for mime, want := range cases {
		if got := Extension(mime); got != want {
			t.Fatalf("Extension(%q) = %q, want %q", mime, got, want)
		}
	}
}
