package notification

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	"screen-problem-llm/src/display"
)

func TestConsumeLogsCaptions(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)

	feed := display.NewFeed(4)
	feed.Publish(display.Update{Image: "data:image/png;base64,AAAA", Caption: "first"})
	feed.Publish(display.Update{Caption: strings.Repeat("y", 300)})
	feed.Publish(display.Update{Caption: "line1\nline2\ttab"})
	feed.Close()

	// Closed feed with drained buffer terminates Consume.
	Consume(context.Background(), feed)

	out := buf.String()
	if !strings.Contains(out, "first") {
		t.Errorf("log missing first caption: %s", out)
	}
	if !strings.Contains(out, strings.Repeat("y", captionLogLimit)+"...") {
		t.Error("long caption should be truncated in the log")
	}
	if strings.Contains(out, strings.Repeat("y", captionLogLimit+1)) {
		t.Error("caption logged beyond the truncation limit")
	}
	if !strings.Contains(out, `line1\nline2\ttab`) {
		t.Errorf("control characters should be escaped in the log: %s", out)
	}
}

func TestConsumeStopsOnCancel(t *testing.T) {
	feed := display.NewFeed(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		Consume(ctx, feed)
		close(done)
	}()
	<-done
}
