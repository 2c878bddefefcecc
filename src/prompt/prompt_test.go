package prompt

import (
	"strings"
	"testing"
)

func TestColdStartHasNoPriorContext(t *testing.T) {
	p := ColdStart()

	if !strings.Contains(p, ProblemSchema) {
		t.Error("Expected cold-start prompt to embed the problem schema")
	}
	if !strings.Contains(p, "functionSignature") {
		t.Error("Expected schema to request a function signature field")
	}
	if strings.Contains(p, "already processed") || strings.Contains(p, "previous") {
		t.Error("Cold-start prompt must not reference prior extractions")
	}
}

func TestIncrementalEmbedsPriorVerbatim(t *testing.T) {
	prior := `{"title": "Two Sum", "description": "Find two indices."}`
	p := Incremental(prior)

	if !strings.Contains(p, "```json\n"+prior+"\n```") {
		t.Error("Expected incremental prompt to embed the prior extraction inside a json fence")
	}
	if !strings.Contains(p, "updated JSON object") {
		t.Error("Expected incremental prompt to request a single updated JSON object")
	}
}

func TestForCapture(t *testing.T) {
	tests := []struct {
		name          string
		capturedCount int
		prior         string
		want          string
	}{
		{name: "first capture is cold start", capturedCount: 0, prior: "", want: ColdStart()},
		{name: "second capture embeds prior", capturedCount: 1, prior: `{"title": "X"}`, want: Incremental(`{"title": "X"}`)},
		{name: "later captures stay incremental", capturedCount: 5, prior: `{"title": "Y"}`, want: Incremental(`{"title": "Y"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForCapture(tt.capturedCount, tt.prior)
			if got != tt.want {
				t.Errorf("ForCapture(%d, %q) selected the wrong variant", tt.capturedCount, tt.prior)
			}
		})
	}
}
