package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"srt2audio/internal/service/clipstore"
	"srt2audio/internal/timeline"

	"github.com/faiface/beep"
)

type fixedProber map[string]int

func (p fixedProber) Bitrate(path string) (int, error) {
	br, ok := p[filepath.Base(path)]
	if !ok {
		return 0, errors.New("no bitrate")
	}
	return br, nil
}

// tone — буфер заданной длины в формате кодека.
func tone(c *Codec, d time.Duration) *beep.Buffer {
	return c.Buffer(beep.Silence(c.Format().SampleRate.N(d)), c.Format())
}

func saveWAV(t *testing.T, store *clipstore.Store, index int, c *Codec, d time.Duration) {
	t.Helper()
	if err := writeWAV(tone(c, d), store.Path(index)); err != nil {
		t.Fatal(err)
	}
}

func TestCodecResample(t *testing.T) {
	c := NewCodec(24000)
	src := beep.Format{SampleRate: 48000, NumChannels: 2, Precision: 2}

	buf := c.Buffer(beep.Silence(48000), src)
	if d := c.Duration(buf.Len()); d < 990*time.Millisecond || d > 1010*time.Millisecond {
		t.Errorf("resampled duration = %v, want ~1s", d)
	}
	if buf.Format().SampleRate != 24000 {
		t.Errorf("SampleRate = %v", buf.Format().SampleRate)
	}
}

func TestCodecDecodeWAV(t *testing.T) {
	c := NewCodec(24000)
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := writeWAV(tone(c, 1500*time.Millisecond), path); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	buf, err := c.Decode(f, "wav")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := c.Duration(buf.Len()); got != 1500*time.Millisecond {
		t.Errorf("duration = %v, want 1.5s", got)
	}
}

func TestCodecDecodeUnsupported(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewCodec(0).Decode(f, "flac"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Decode() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLibraryAndTrack(t *testing.T) {
	c := NewCodec(24000)
	store, err := clipstore.New(t.TempDir(), "wav")
	if err != nil {
		t.Fatal(err)
	}
	saveWAV(t, store, 1, c, time.Second)
	saveWAV(t, store, 3, c, 500*time.Millisecond)

	lib := NewLibrary(store, c, fixedProber{"1.wav": 384000}, nil)
	track := NewTrack(c, lib)

	cues := []timeline.Cue{
		{Index: 1, Start: 0},
		{Index: 2, Start: 1200 * time.Millisecond},
		{Index: 3, Start: 2 * time.Second},
	}
	res, err := timeline.New(nil).Assemble(cues, lib, track)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if res.Bitrate != 384000 {
		t.Errorf("Bitrate = %d", res.Bitrate)
	}
	if len(res.Skipped) != 1 || !errors.Is(res.Skipped[0].Err, timeline.ErrMissingClip) {
		t.Errorf("Skipped = %+v", res.Skipped)
	}
	if track.Len() != res.Cursor || res.Cursor != 2500*time.Millisecond {
		t.Errorf("track length = %v, cursor = %v, want 2.5s", track.Len(), res.Cursor)
	}
	if len(lib.decoded) != 0 {
		t.Errorf("decoded clips not released: %d", len(lib.decoded))
	}
}

func TestTrackAppendUndecodedClip(t *testing.T) {
	c := NewCodec(24000)
	store, _ := clipstore.New(t.TempDir(), "wav")
	track := NewTrack(c, NewLibrary(store, c, nil, nil))
	if err := track.AppendClip(7); !errors.Is(err, timeline.ErrMissingClip) {
		t.Errorf("AppendClip() error = %v", err)
	}
}

func TestExportWAV(t *testing.T) {
	c := NewCodec(24000)
	out := filepath.Join(t.TempDir(), "output.wav")
	if err := NewExporter(nil).Export(context.Background(), tone(c, 250*time.Millisecond), out, 0); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := c.Decode(f, "wav")
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Duration(buf.Len()); got != 250*time.Millisecond {
		t.Errorf("exported duration = %v", got)
	}
}

func TestExportRejects(t *testing.T) {
	c := NewCodec(24000)
	dir := t.TempDir()
	e := NewExporter(nil)
	if err := e.Export(context.Background(), tone(c, time.Millisecond), filepath.Join(dir, "x.flac"), 64000); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("flac: error = %v", err)
	}
	if err := e.Export(context.Background(), tone(c, time.Millisecond), filepath.Join(dir, "x.mp3"), 0); err == nil {
		t.Error("mp3 without bitrate: expected error")
	}
}

func TestParseBitrate(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    int
		wantErr bool
	}{
		{name: "mp3", out: `{"format":{"format_name":"mp3","bit_rate":"48000"}}`, want: 48000},
		{name: "fractional", out: `{"format":{"bit_rate":"127999.5"}}`, want: 127999},
		{name: "missing", out: `{"format":{"format_name":"mp3"}}`, wantErr: true},
		{name: "n/a", out: `{"format":{"bit_rate":"N/A"}}`, wantErr: true},
		{name: "garbage", out: `not json`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBitrate(tt.out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseBitrate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseBitrate() = %d, want %d", got, tt.want)
			}
		})
	}
}
