package session

import "testing"

func TestApplyExtractionReplacesWholesale(t *testing.T) {
	s := New()

	if !s.Empty() {
		t.Fatal("Expected new session to be empty")
	}

	if !s.ApplyExtraction(`{"title":"A"}`) {
		t.Error("Expected first extraction to apply")
	}
	if s.Accumulated() != `{"title":"A"}` {
		t.Errorf("Expected accumulated to equal first extraction, got %q", s.Accumulated())
	}

	// Later responses replace entirely, never append
	if !s.ApplyExtraction(`{"title":"B"}`) {
		t.Error("Expected second extraction to apply")
	}
	if s.Accumulated() != `{"title":"B"}` {
		t.Errorf("Expected accumulated to equal latest extraction, got %q", s.Accumulated())
	}
}

func TestApplyExtractionEmptyKeepsPrevious(t *testing.T) {
	s := New()
	s.ApplyExtraction(`{"title":"A"}`)

	if s.ApplyExtraction("") {
		t.Error("Expected empty extraction to report no replacement")
	}
	if s.Accumulated() != `{"title":"A"}` {
		t.Errorf("Expected empty extraction to keep previous result, got %q", s.Accumulated())
	}
}

func TestNoteCaptureCountsEveryCapture(t *testing.T) {
	s := New()

	if n := s.NoteCapture(); n != 1 {
		t.Errorf("Expected first capture ordinal 1, got %d", n)
	}
	// A capture whose inference fails still counts; only ApplyExtraction is skipped
	if n := s.NoteCapture(); n != 2 {
		t.Errorf("Expected second capture ordinal 2, got %d", n)
	}
	if !s.Empty() {
		t.Error("Expected session with no applied extraction to stay empty")
	}
	if s.CapturedCount() != 2 {
		t.Errorf("Expected captured count 2, got %d", s.CapturedCount())
	}
}

func TestResetClearsBothFields(t *testing.T) {
	s := New()
	s.NoteCapture()
	s.ApplyExtraction(`{"title":"A"}`)

	s.Reset()

	if s.CapturedCount() != 0 {
		t.Errorf("Expected captured count 0 after reset, got %d", s.CapturedCount())
	}
	if !s.Empty() {
		t.Errorf("Expected empty session after reset, got %q", s.Accumulated())
	}
}
