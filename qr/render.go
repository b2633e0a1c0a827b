package qr

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// ModeHosted renders a URL referencing externally generated QR art.
	ModeHosted = "hosted"
	// ModeInline renders a self-contained base64 PNG data URI.
	ModeInline = "inline"
)

// Config selects the rendering mode.
type Config struct {
	Mode          string
	HostedBaseURL string
	Size          int
}

// Renderer produces a renderable payload from a raw scan code.
type Renderer interface {
	Render(code string) (string, error)
}

// New returns the renderer for the configured mode.
func New(cfg Config) (Renderer, error) {
	if cfg.Size <= 0 {
		return nil, errors.New("qr size must be positive")
	}
	switch cfg.Mode {
	case ModeHosted:
		if cfg.HostedBaseURL == "" {
			return nil, errors.New("hosted qr mode requires a base url")
		}
		return &Hosted{baseURL: cfg.HostedBaseURL, size: cfg.Size}, nil
	case ModeInline:
		return &Inline{size: cfg.Size}, nil
	default:
		return nil, fmt.Errorf("unknown qr mode %q", cfg.Mode)
	}
}

// Hosted renders a qrserver-style image URL carrying the url-encoded code.
type Hosted struct {
	baseURL string
	size    int
}

// Render returns <base>?data=<encoded>&size=NxN.
func (h *Hosted) Render(code string) (string, error) {
	base := strings.TrimSuffix(h.baseURL, "?")
	return fmt.Sprintf("%s?data=%s&size=%dx%d", base, url.QueryEscape(code), h.size, h.size), nil
}

// Inline renders the code locally as a PNG and returns a data URI. No
// external service sees the code in this mode.
type Inline struct {
	size int
}

// Render returns data:image/png;base64,<png>.
func (i *Inline) Render(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, i.size)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
