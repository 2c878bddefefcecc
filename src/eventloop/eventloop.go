package eventloop

import (
	"context"
	"fmt"
	"log"

	"screen-problem-llm/src/backend"
	"screen-problem-llm/src/clipboard"
	"screen-problem-llm/src/config"
	"screen-problem-llm/src/display"
	"screen-problem-llm/src/hotkey"
	"screen-problem-llm/src/llm"
	"screen-problem-llm/src/prompt"
	"screen-problem-llm/src/screenshot"
	"screen-problem-llm/src/session"
	"screen-problem-llm/src/singleinstance"
	"screen-problem-llm/src/tray"
	"screen-problem-llm/src/worker"
)

// CaptureFunc grabs the primary screen as PNG bytes.
type CaptureFunc func() ([]byte, error)

// ExtractFunc sends one image plus prompt to the vision model and returns
// the cleaned response text.
type ExtractFunc func(ctx context.Context, image []byte, promptText string) (string, error)

// SubmitFunc posts the finalized problem to the backend and returns the
// HTTP status code it answered with.
type SubmitFunc func(ctx context.Context, problem string) (int, error)

// ClipFunc copies text to the system clipboard.
type ClipFunc func(text string) error

// Loop is the single-threaded coordinator for the capture session. All
// session state is read and written on the Run goroutine only; triggers
// from hotkeys and delegated clients are funneled in through channels.
type Loop struct {
	sess       *session.Session
	pool       *worker.Pool
	feed       *display.Feed
	srv        singleinstance.Server
	busy       bool
	results    chan result
	captureCh  chan struct{}
	finalizeCh chan struct{}

	capture CaptureFunc
	extract ExtractFunc
	submit  SubmitFunc
	clip    ClipFunc

	defaultTooltip string
}

type jobKind int

const (
	jobExtract jobKind = iota
	jobSubmit
)

type result struct {
	kind   jobKind
	image  []byte
	text   string
	status int
	err    error
	// conn is non-nil when a delegated client is waiting for the outcome.
	conn singleinstance.Conn
}

// New creates an event loop wired to the real capture, inference, and
// submission implementations.
func New(cfg *config.Config, feed *display.Feed) *Loop {
	l := &Loop{
		sess:           session.New(),
		pool:           worker.New(1),
		feed:           feed,
		results:        make(chan result, 1),
		captureCh:      make(chan struct{}, 4),
		finalizeCh:     make(chan struct{}, 4),
		capture:        screenshot.CapturePrimary,
		extract:        llm.QueryVisionContext,
		defaultTooltip: "Screen Problem Capture",
	}

	backendURL := config.DefaultBackendURL
	if cfg != nil && cfg.BackendURL != "" {
		backendURL = cfg.BackendURL
	}
	l.submit = backend.New(backendURL).SubmitProblem

	if cfg != nil && cfg.CopyResult {
		l.clip = clipboard.Write
	}
	return l
}

// SetDefaultTooltip optionally sets the tray tooltip base text.
func (l *Loop) SetDefaultTooltip(tt string) { l.defaultTooltip = tt }

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if b {
		tray.UpdateTooltip("Screen Problem: processing...")
	} else {
		tray.UpdateTooltip(l.defaultTooltip)
	}
}

// TriggerCapture posts a capture trigger without blocking. Extra triggers
// beyond the small buffer are dropped.
func (l *Loop) TriggerCapture() {
	select {
	case l.captureCh <- struct{}{}:
	default:
	}
}

// TriggerFinalize posts a finalize trigger without blocking.
func (l *Loop) TriggerFinalize() {
	select {
	case l.finalizeCh <- struct{}{}:
	default:
	}
}

// StartHotkeys registers the global capture and finalize hotkeys.
func (l *Loop) StartHotkeys(captureCombo, finalizeCombo string) {
	var bindings []hotkey.Binding
	if captureCombo != "" {
		bindings = append(bindings, hotkey.Binding{Combo: captureCombo, OnTrigger: l.TriggerCapture})
	}
	if finalizeCombo != "" {
		bindings = append(bindings, hotkey.Binding{Combo: finalizeCombo, OnTrigger: l.TriggerFinalize})
	}
	if len(bindings) == 0 {
		return
	}
	hotkey.Listen(bindings...)
}

// Run starts the singleinstance server and processes triggers until ctx
// is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.srv = singleinstance.NewServer()
	if err := l.srv.Start(ctx); err != nil {
		return err
	}
	if p := l.srv.Port(); p > 0 {
		log.Printf("Resident listening on 127.0.0.1:%d", p)
		tray.SetAboutExtra(fmt.Sprintf("Resident TCP port: %d", p))
	}
	defer l.pool.Close()

	// Accept loop in background to avoid blocking result handling
	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				close(reqCh)
				return
			}
			reqCh <- conn
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.captureCh:
			l.handleCapture(ctx, nil)
		case <-l.finalizeCh:
			l.handleFinalize(ctx, nil)
		case conn, ok := <-reqCh:
			if !ok {
				return nil
			}
			l.handleConn(ctx, conn)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) {
	switch conn.Request().Kind {
	case singleinstance.TriggerCapture:
		l.handleCapture(ctx, conn)
	case singleinstance.TriggerFinalize:
		l.handleFinalize(ctx, conn)
	default:
		_ = conn.RespondError("unknown trigger")
		_ = conn.Close()
	}
}

// handleCapture runs the synchronous half of the capture pipeline:
// grab the screen, pick the prompt for the current session state, commit
// the capture count, then hand the inference off to the pool.
func (l *Loop) handleCapture(ctx context.Context, conn singleinstance.Conn) {
	if l.busy {
		l.denyBusy(conn, "capture")
		return
	}

	image, err := l.capture()
	if err != nil {
		capErr := fmt.Errorf("screenshot capture failed: %w", err)
		log.Printf("handleCapture: %v", capErr)
		l.publishError(capErr)
		l.respondError(conn, capErr.Error())
		return
	}

	// The prompt variant depends on the count before this capture.
	promptText := prompt.ForCapture(l.sess.CapturedCount(), l.sess.Accumulated())
	count := l.sess.NoteCapture()
	log.Printf("handleCapture: screenshot #%d captured (%d bytes)", count, len(image))

	l.setBusy(true)
	submitted := l.pool.Submit(ctx, func(jobCtx context.Context) {
		text, err := l.extract(jobCtx, image, promptText)
		l.results <- result{kind: jobExtract, image: image, text: text, err: err, conn: conn}
	})
	if !submitted {
		l.setBusy(false)
		l.denyBusy(conn, "capture")
	}
}

// handleFinalize validates the session and hands the submission off to
// the pool. An empty session never reaches the network.
func (l *Loop) handleFinalize(ctx context.Context, conn singleinstance.Conn) {
	if l.busy {
		l.denyBusy(conn, "finalize")
		return
	}

	if l.sess.Empty() {
		log.Printf("handleFinalize: %v", session.ErrNoExtraction)
		l.respondError(conn, session.ErrNoExtraction.Error())
		return
	}

	problem := l.sess.Accumulated()
	l.setBusy(true)
	submitted := l.pool.Submit(ctx, func(jobCtx context.Context) {
		status, err := l.submit(jobCtx, problem)
		l.results <- result{kind: jobSubmit, status: status, err: err, conn: conn}
	})
	if !submitted {
		l.setBusy(false)
		l.denyBusy(conn, "finalize")
	}
}

func (l *Loop) handleResult(res result) {
	defer l.setBusy(false)
	switch res.kind {
	case jobExtract:
		l.finishExtract(res)
	case jobSubmit:
		l.finishSubmit(res)
	}
}

func (l *Loop) finishExtract(res result) {
	if res.err != nil {
		infErr := fmt.Errorf("inference failed: %w", res.err)
		log.Printf("finishExtract: %v", infErr)
		l.publishError(infErr)
		l.respondError(res.conn, infErr.Error())
		return
	}

	replaced := l.sess.ApplyExtraction(res.text)
	if replaced {
		log.Printf("finishExtract: accumulated result replaced (%d chars)", len(res.text))
	} else {
		log.Printf("finishExtract: empty model response, keeping previous result")
	}

	if l.clip != nil && replaced {
		if err := l.clip(l.sess.Accumulated()); err != nil {
			log.Printf("finishExtract: clipboard copy failed: %v", err)
		}
	}

	caption := display.Preview(l.sess.Accumulated())
	l.publish(display.Update{Image: display.PNGDataURL(res.image), Caption: caption})
	l.respondSuccess(res.conn, caption)
}

func (l *Loop) finishSubmit(res result) {
	if res.err != nil {
		subErr := fmt.Errorf("submission failed: %w", res.err)
		log.Printf("finishSubmit: %v (session preserved)", subErr)
		l.respondError(res.conn, subErr.Error())
		return
	}

	// Any answer from the backend ends the session, success or not.
	log.Printf("finishSubmit: backend answered %d, resetting session", res.status)
	caption := fmt.Sprintf("Sent problem to backend (status %d)", res.status)
	l.publish(display.Update{Caption: caption})
	l.sess.Reset()
	l.respondSuccess(res.conn, caption)
}

func (l *Loop) denyBusy(conn singleinstance.Conn, what string) {
	if conn == nil {
		log.Printf("handle %s: busy, dropping trigger", what)
		return
	}
	log.Printf("handle %s: busy, rejecting delegated trigger", what)
	_ = conn.RespondError("busy, please retry")
	_ = conn.Close()
}

func (l *Loop) respondSuccess(conn singleinstance.Conn, text string) {
	if conn == nil {
		return
	}
	if err := conn.RespondSuccess(text); err != nil {
		log.Printf("singleinstance reply failed: %v", err)
	}
	_ = conn.Close()
}

func (l *Loop) respondError(conn singleinstance.Conn, msg string) {
	if conn == nil {
		return
	}
	if err := conn.RespondError(msg); err != nil {
		log.Printf("singleinstance reply failed: %v", err)
	}
	_ = conn.Close()
}

func (l *Loop) publish(u display.Update) {
	if l.feed == nil {
		return
	}
	if !l.feed.Publish(u) {
		log.Printf("display feed full, dropping update")
	}
}

func (l *Loop) publishError(err error) {
	l.publish(display.Update{Caption: display.ErrorCaption(err)})
}
