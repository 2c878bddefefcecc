package screenshot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/kbinani/screenshot"
)

// ErrNoDisplay is returned when the host has no capturable screen.
var ErrNoDisplay = errors.New("no active displays found")

func Init() {
	// Initialize screenshot package if needed
}

// PrimaryBounds returns the bounds of the primary display (display 0).
func PrimaryBounds() (image.Rectangle, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return image.Rectangle{}, ErrNoDisplay
	}
	return screenshot.GetDisplayBounds(0), nil
}

// CapturePrimary captures the whole primary display and returns it as
// in-memory PNG bytes. The image never touches disk.
func CapturePrimary() ([]byte, error) {
	bounds, err := PrimaryBounds()
	if err != nil {
		return nil, err
	}
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("invalid primary display bounds: %v", bounds)
	}

	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture primary display: %v", err)
	}

	return encodePNG(img)
}

func encodePNG(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %v", err)
	}
	return buf.Bytes(), nil
}
