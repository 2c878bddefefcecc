package viewer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"screen-problem-llm/src/display"
)

func encodeTestPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	raw := encodeTestPNG(t)
	decoded := decodeImage(display.PNGDataURL(raw))
	if decoded == nil {
		t.Fatal("expected decoded image")
	}
	if got := decoded.Bounds(); got.Dx() != 2 || got.Dy() != 2 {
		t.Errorf("bounds = %v", got)
	}
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	if decodeImage("") != nil {
		t.Error("empty payload should decode to nil")
	}
	if decodeImage("data:image/png;base64,!!!") != nil {
		t.Error("invalid base64 should decode to nil")
	}
	if decodeImage(display.PNGDataURL([]byte("not a png"))) != nil {
		t.Error("non-PNG bytes should decode to nil")
	}
}
