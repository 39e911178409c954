package subtitle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSRT(t *testing.T) {
	path := writeFile(t, "in.srt", `7
00:00:00,000 --> 00:00:01,500
Hello there

8
00:00:02,250 --> 00:00:04,000
Second line
continues here

9
00:00:01,000 --> 00:00:02,000
Out of order
`)

	cues, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cues) != 3 {
		t.Fatalf("len(cues) = %d, want 3", len(cues))
	}

	want := []Cue{
		{Index: 1, Start: 0, End: 1500 * time.Millisecond, Text: "Hello there"},
		{Index: 2, Start: 2250 * time.Millisecond, End: 4 * time.Second, Text: "Second line\ncontinues here"},
		{Index: 3, Start: time.Second, End: 2 * time.Second, Text: "Out of order"},
	}
	for i := range want {
		if cues[i] != want[i] {
			t.Errorf("cue %d = %+v, want %+v", i, cues[i], want[i])
		}
	}
}

func TestLoadEmpty(t *testing.T) {
	path := writeFile(t, "empty.srt", "")
	if _, err := Load(path); !errors.Is(err, ErrNoCues) {
		t.Errorf("Load() error = %v, want ErrNoCues", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.srt")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}
