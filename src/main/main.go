package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"runtime"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"screen-problem-llm/src/config"
	"screen-problem-llm/src/display"
	"screen-problem-llm/src/eventloop"
	"screen-problem-llm/src/llm"
	"screen-problem-llm/src/logutil"
	"screen-problem-llm/src/notification"
	"screen-problem-llm/src/prompt"
	"screen-problem-llm/src/runtimeinit"
	"screen-problem-llm/src/screenshot"
	"screen-problem-llm/src/singleinstance"
	"screen-problem-llm/src/tray"
	"screen-problem-llm/src/viewer"
)

const appTitle = "Screen Problem Capture"

// mainOptions carries parsed command line state.
type mainOptions struct {
	trigger    string
	headless   bool
	apiKeyPath string
}

// normalizeLegacyArgs maps single-dash long flags from older wrappers to
// the double-dash form cobra expects.
func normalizeLegacyArgs(args []string) []string {
	known := []string{"trigger", "headless", "api-key-path"}
	out := make([]string, len(args))
	copy(out, args)
	for i := 1; i < len(out); i++ {
		arg := out[i]
		for _, name := range known {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				out[i] = "-" + arg
				break
			}
		}
	}
	return out
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screen-problem-llm",
		Short: "Resident tool that captures screenshots and extracts programming problems",
		Long: `Runs as a resident desktop utility with two global hotkeys: one captures
the primary screen and feeds it to a vision model that extracts the
programming problem shown on it, merging across captures; the other sends
the accumulated problem to the solver backend.

With --trigger, the invocation is forwarded to an already-running
instance instead of starting a new one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.trigger, "trigger", "", "Send a trigger (capture|finalize) to the resident instance and exit")
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "Run without the viewer window, logging display updates instead")
	cmd.Flags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Override the API key file path")
	return cmd
}

func main() {
	// The viewer window must stay on the main OS thread.
	runtime.LockOSThread()

	os.Args = normalizeLegacyArgs(os.Args)

	opts := &mainOptions{}
	if err := fang.Execute(
		context.Background(),
		newRootCmd(opts),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *mainOptions) error {
	if opts.trigger != "" {
		return runTrigger(ctx, opts)
	}
	return runResident(ctx, opts)
}

func parseTriggerKind(s string) (singleinstance.TriggerKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "capture":
		return singleinstance.TriggerCapture, nil
	case "finalize":
		return singleinstance.TriggerFinalize, nil
	default:
		return "", fmt.Errorf("unknown trigger %q (want capture or finalize)", s)
	}
}

// triggerClient matches singleinstance.Client so tests can fake delegation.
type triggerClient interface {
	TryTrigger(ctx context.Context, kind singleinstance.TriggerKind) (bool, string, error)
}

func runTrigger(ctx context.Context, opts *mainOptions) error {
	kind, err := parseTriggerKind(opts.trigger)
	if err != nil {
		return err
	}

	// Load .env early so SINGLEINSTANCE_PORT_* apply before the scan.
	_, _ = config.Load()

	var fallback func() error
	if kind == singleinstance.TriggerCapture {
		fallback = func() error { return runStandaloneCapture(opts) }
	}
	return handleTriggerWithDelegation(ctx, kind, singleinstance.NewClient(), fallback)
}

// handleTriggerWithDelegation forwards the trigger to a resident
// instance when one answers. Capture can run standalone as a fallback;
// finalize cannot, since the session lives in the resident.
func handleTriggerWithDelegation(ctx context.Context, kind singleinstance.TriggerKind, client triggerClient, fallback func() error) error {
	delegated, reply, err := client.TryTrigger(ctx, kind)
	if err != nil {
		if fallback != nil {
			log.Printf("Delegation error: %v; falling back to standalone", err)
			return fallback()
		}
		return fmt.Errorf("resident instance refused the trigger: %w", err)
	}
	if delegated {
		log.Printf("Delegated %s to resident", kind)
		if reply != "" {
			fmt.Println(reply)
		}
		return nil
	}
	if fallback != nil {
		log.Printf("No resident detected, running standalone")
		return fallback()
	}
	return errors.New("no resident instance is running; finalize needs one")
}

// runStandaloneCapture performs a single screenshot-and-extract without a
// resident session and prints the result to stdout.
func runStandaloneCapture(opts *mainOptions) error {
	_, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:  config.LoadOptions{APIKeyPathOverride: opts.apiKeyPath},
		SetupLogging: logutil.Setup,
	})
	if err != nil {
		return err
	}

	image, err := screenshot.CapturePrimary()
	if err != nil {
		return fmt.Errorf("screenshot capture failed: %w", err)
	}
	text, err := llm.QueryVision(image, prompt.ColdStart())
	if err != nil {
		return fmt.Errorf("inference failed: %w", err)
	}

	log.Printf("Extracted problem (%d chars): %q", len(text), sanitizeForLogging(text))
	fmt.Print(text)
	return nil
}

func runResident(ctx context.Context, opts *mainOptions) error {
	// Load .env early so SINGLEINSTANCE_PORT_* are set for the pre-flight.
	_, _ = config.Load()

	// Claim the resident port before any heavyweight init. If it is taken,
	// another instance already runs and this one must not start.
	startPort, _ := singleinstance.PortRange()
	addr := fmt.Sprintf("127.0.0.1:%d", startPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		if port, found := singleinstance.DetectResidentPort(ctx); found {
			log.Printf("Pre-flight: resident already running on port %d", port)
			return fmt.Errorf("another instance is already running on port %d", port)
		}
		return fmt.Errorf("pre-flight: port %d is busy: %w", startPort, err)
	}
	// Release the claim so the event loop server can re-bind it.
	_ = listener.Close()
	log.Printf("Pre-flight: port %d free, claiming resident role", startPort)

	// Validate the model before registering hotkeys; a misconfigured key
	// should fail loudly at startup, not on the first capture.
	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:          config.LoadOptions{APIKeyPathOverride: opts.apiKeyPath},
		SetupLogging:         logutil.Setup,
		ShowBlockingLLMError: true,
	})
	if err != nil {
		return err
	}

	log.Printf("%s initialized", appTitle)
	log.Printf("Using model: %s (temperature %.2f)", cfg.Model, cfg.Temperature)
	log.Printf("API key: %s", logutil.RedactKey(cfg.APIKey))
	log.Printf("Capture hotkey: %s", cfg.CaptureHotkey)
	log.Printf("Finalize hotkey: %s", cfg.FinalizeHotkey)
	log.Printf("Backend: %s", cfg.BackendURL)

	tray.SetAboutHotkeys(cfg.CaptureHotkey, cfg.FinalizeHotkey)

	tooltip := fmt.Sprintf("%s - %s to capture, %s to send", appTitle, cfg.CaptureHotkey, cfg.FinalizeHotkey)
	feed := display.NewFeed(8)
	loop := eventloop.New(cfg, feed)
	loop.SetDefaultTooltip(tooltip)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	trayIcon, _ := tray.New(tray.Config{
		Title:      appTitle,
		Tooltip:    tooltip,
		OnCapture:  loop.TriggerCapture,
		OnFinalize: loop.TriggerFinalize,
		OnExit:     cancel,
	})
	go trayIcon.Run()
	defer trayIcon.Destroy()

	loop.StartHotkeys(cfg.CaptureHotkey, cfg.FinalizeHotkey)

	if opts.headless || cfg.Headless {
		go notification.Consume(runCtx, feed)
		return waitForLoop(loop.Run(runCtx))
	}

	v := viewer.New(appTitle, cancel)
	go v.Watch(runCtx, feed)

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- loop.Run(runCtx)
		cancel()
	}()

	// Blocks on the main goroutine until the window closes or the loop dies.
	v.Run()
	cancel()

	return waitForLoop(<-loopErr)
}

func waitForLoop(err error) error {
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("event loop stopped: %v", err)
		return err
	}
	return nil
}

// sanitizeForLogging bounds text and escapes control characters so model
// output cannot inject log lines.
func sanitizeForLogging(text string) string {
	const maxLogLength = 100
	if len(text) > maxLogLength {
		text = text[:maxLogLength] + "..."
	}

	sanitized := ""
	for _, r := range text {
		if r == '\n' || r == '\r' {
			sanitized += "\\n"
		} else if r == '\t' {
			sanitized += "\\t"
		} else if r < 32 || r == 127 {
			sanitized += "?"
		} else {
			sanitized += string(r)
		}
	}
	return sanitized
}
