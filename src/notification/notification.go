// Package notification is the display surface for headless runs and the
// channel for startup-fatal errors.
package notification

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"screen-problem-llm/src/display"
)

const captionLogLimit = 200

// Consume drains display updates and logs their captions. It returns
// when ctx is cancelled or the feed is closed.
func Consume(ctx context.Context, feed *display.Feed) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-feed.Updates():
			if !ok {
				return
			}
			logUpdate(u)
		}
	}
}

func logUpdate(u display.Update) {
	caption := u.Caption
	if len(caption) > captionLogLimit {
		caption = caption[:captionLogLimit] + "..."
	}
	caption = escapeControl(caption)
	if u.Image != "" {
		log.Printf("Display update: image %d bytes, caption: %s", len(u.Image), caption)
		return
	}
	log.Printf("Display update: %s", caption)
}

// escapeControl keeps model output from injecting extra log lines.
func escapeControl(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteString("\\n")
		case r == '\t':
			b.WriteString("\\t")
		case r < 32 || r == 127:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ShowBlockingError surfaces an error the user must see before the
// process exits. It writes to stderr as well as the log so the message
// survives disabled file logging.
func ShowBlockingError(title, message string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
	log.Printf("%s: %s", title, message)
}
