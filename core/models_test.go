package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestContentHash(t *testing.T) {
	a := ContentHash([]byte("report body"))
	b := ContentHash([]byte("report body"))
	c := ContentHash([]byte("other body"))

	if a != b {
		t.Errorf("ContentHash() not deterministic: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("ContentHash() collided for different input")
	}
	if len(a) != 16 {
		t.Errorf("ContentHash() length = %d, want 16", len(a))
	}
}

func TestFileState_String(t *testing.T) {
	tests := []struct {
		state FileState
		want  string
	}{
		{StateUnseen, "unseen"},
		{StateExtracting, "extracting"},
		{StateChunking, "chunking"},
		{StateUploading, "uploading"},
		{StateMoving, "moving"},
		{StateDone, "done"},
		{StateSkipped, "skipped"},
		{StateFailed, "failed"},
		{FileState(42), "FileState(42)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("FileState(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}

func TestFileState_IsTerminal(t *testing.T) {
	for _, s := range []FileState{StateDone, StateSkipped, StateFailed} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []FileState{StateUnseen, StateExtracting, StateChunking, StateUploading, StateMoving} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
