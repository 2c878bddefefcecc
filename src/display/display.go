// Package display carries updates from the event loop to whatever renders
// them (fyne viewer window or the headless log consumer). The loop is the
// sole producer; publishing never blocks it.
package display

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// CaptionLimit is the caption preview budget in bytes.
	CaptionLimit = 400

	ellipsis = "..."

	pngDataURLPrefix = "data:image/png;base64,"
)

// Update is one display refresh. Image is a PNG data URL or "" when the
// update carries no screenshot (errors, submission reports).
type Update struct {
	Image   string
	Caption string
}

// Feed is a bounded single-consumer channel of display updates.
type Feed struct {
	ch chan Update
}

func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = 8
	}
	return &Feed{ch: make(chan Update, buffer)}
}

// Publish enqueues an update without blocking. A full buffer drops the
// update and reports false; the consumer is behind and newer state follows.
func (f *Feed) Publish(u Update) bool {
	select {
	case f.ch <- u:
		return true
	default:
		return false
	}
}

// Updates exposes the consumer side of the feed.
func (f *Feed) Updates() <-chan Update {
	return f.ch
}

// Close ends the feed. Only the producer may call it.
func (f *Feed) Close() {
	close(f.ch)
}

// Preview bounds text to the caption budget, marking truncation with an
// ellipsis. Truncation is byte-based like the rest of the pipeline.
func Preview(text string) string {
	if len(text) > CaptionLimit {
		return text[:CaptionLimit] + ellipsis
	}
	return text
}

// ErrorCaption formats a failure for the display surface.
func ErrorCaption(err error) string {
	return fmt.Sprintf("ERROR: %v", err)
}

// PNGDataURL encodes PNG bytes as a data URL for display updates.
func PNGDataURL(imageData []byte) string {
	if len(imageData) == 0 {
		return ""
	}
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(imageData)
}

// DecodePNGDataURL recovers PNG bytes from a data URL produced by PNGDataURL.
func DecodePNGDataURL(url string) ([]byte, error) {
	if !strings.HasPrefix(url, pngDataURLPrefix) {
		return nil, fmt.Errorf("not a PNG data URL")
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, pngDataURLPrefix))
	if err != nil {
		return nil, fmt.Errorf("invalid PNG data URL payload: %w", err)
	}
	return data, nil
}
