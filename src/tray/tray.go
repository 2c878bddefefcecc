// Package tray renders the resident system tray icon and menu.
package tray

import (
	"fmt"
	"log"
	"sync"

	"github.com/getlantern/systray"
)

// Config describes the tray icon and its menu callbacks.
type Config struct {
	Title      string
	Tooltip    string
	OnCapture  func()
	OnFinalize func()
	OnExit     func()
}

// Tray owns the systray lifecycle. Run must be called from a dedicated
// goroutine; systray blocks until Quit.
type Tray struct {
	cfg Config
}

var (
	mu             sync.Mutex
	ready          bool
	aboutCapture   string
	aboutFinalize  string
	aboutExtra     string
	currentTooltip string
)

// New prepares a tray icon. Nothing is shown until Run.
func New(cfg Config) (*Tray, error) {
	if cfg.Title == "" {
		cfg.Title = "Screen Problem Capture"
	}
	if cfg.Tooltip == "" {
		cfg.Tooltip = cfg.Title
	}
	return &Tray{cfg: cfg}, nil
}

// Run starts the systray loop and blocks until the tray exits.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Destroy removes the tray icon and unblocks Run.
func (t *Tray) Destroy() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetIcon([]byte(IconSVG))
	systray.SetTitle(t.cfg.Title)
	systray.SetTooltip(t.cfg.Tooltip)

	mu.Lock()
	ready = true
	currentTooltip = t.cfg.Tooltip
	mu.Unlock()

	mCapture := systray.AddMenuItem("Capture Screenshot", "Capture the primary screen and extract the problem")
	mFinalize := systray.AddMenuItem("Finalize && Send", "Send the accumulated problem to the backend")
	mAbout := systray.AddMenuItem("About", "Show hotkeys and connection info")
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				if t.cfg.OnCapture != nil {
					t.cfg.OnCapture()
				}
			case <-mFinalize.ClickedCh:
				if t.cfg.OnFinalize != nil {
					t.cfg.OnFinalize()
				}
			case <-mAbout.ClickedCh:
				log.Printf("About: %s", AboutText(t.cfg.Title))
			case <-mQuit.ClickedCh:
				systray.Quit()
			}
		}
	}()
}

func (t *Tray) onExit() {
	mu.Lock()
	ready = false
	mu.Unlock()
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}

// UpdateTooltip changes the tray tooltip. Safe to call before the tray
// is ready or when no tray exists; it becomes a no-op.
func UpdateTooltip(text string) {
	mu.Lock()
	ok := ready
	if ok {
		currentTooltip = text
	}
	mu.Unlock()
	if !ok {
		return
	}
	systray.SetTooltip(text)
}

// Tooltip returns the tooltip last applied to a ready tray.
func Tooltip() string {
	mu.Lock()
	defer mu.Unlock()
	return currentTooltip
}

// SetAboutHotkeys records the configured hotkeys for the About entry.
func SetAboutHotkeys(capture, finalize string) {
	mu.Lock()
	defer mu.Unlock()
	aboutCapture = capture
	aboutFinalize = finalize
}

// SetAboutExtra appends one extra line to the About entry, such as the
// resident TCP port.
func SetAboutExtra(text string) {
	mu.Lock()
	defer mu.Unlock()
	aboutExtra = text
}

// AboutText composes the About entry body from the recorded pieces.
func AboutText(title string) string {
	mu.Lock()
	defer mu.Unlock()
	s := title
	if aboutCapture != "" {
		s += fmt.Sprintf(" | capture: %s", aboutCapture)
	}
	if aboutFinalize != "" {
		s += fmt.Sprintf(" | finalize: %s", aboutFinalize)
	}
	if aboutExtra != "" {
		s += fmt.Sprintf(" | %s", aboutExtra)
	}
	return s
}
