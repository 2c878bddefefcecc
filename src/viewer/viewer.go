// Package viewer renders display updates in a desktop window: the most
// recent screenshot above the extracted problem preview.
package viewer

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"screen-problem-llm/src/display"
)

// Viewer owns the window. Run must be called on the main goroutine;
// Watch applies feed updates from any goroutine via fyne.Do.
type Viewer struct {
	app   fyne.App
	win   fyne.Window
	img   *canvas.Image
	label *widget.Label
}

// New builds the window. onClose fires when the user closes it.
func New(title string, onClose func()) *Viewer {
	a := app.New()
	w := a.NewWindow(title)

	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(480, 270))

	label := widget.NewLabel("Press the capture hotkey to grab the first screenshot.")
	label.Wrapping = fyne.TextWrapWord

	w.SetContent(container.NewBorder(nil, label, nil, nil, img))
	w.Resize(fyne.NewSize(520, 420))
	if onClose != nil {
		w.SetOnClosed(onClose)
	}

	return &Viewer{app: a, win: w, img: img, label: label}
}

// Watch applies display updates to the window until ctx is cancelled or
// the feed closes. Run it on its own goroutine.
func (v *Viewer) Watch(ctx context.Context, feed *display.Feed) {
	for {
		select {
		case <-ctx.Done():
			fyne.Do(v.app.Quit)
			return
		case u, ok := <-feed.Updates():
			if !ok {
				return
			}
			v.apply(u)
		}
	}
}

func (v *Viewer) apply(u display.Update) {
	decoded := decodeImage(u.Image)
	fyne.Do(func() {
		if decoded != nil {
			v.img.Image = decoded
			v.img.Refresh()
		}
		// Error and status updates carry no image; the last screenshot
		// stays visible under the new caption.
		v.label.SetText(u.Caption)
	})
}

// Run shows the window and blocks until the app quits.
func (v *Viewer) Run() {
	v.win.ShowAndRun()
}

func decodeImage(dataURL string) image.Image {
	if dataURL == "" {
		return nil
	}
	raw, err := display.DecodePNGDataURL(dataURL)
	if err != nil {
		log.Printf("viewer: bad image payload: %v", err)
		return nil
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		log.Printf("viewer: PNG decode failed: %v", err)
		return nil
	}
	return img
}
