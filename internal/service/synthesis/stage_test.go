package synthesis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"srt2audio/internal/service/clipstore"
	"srt2audio/internal/service/tts"
	"srt2audio/internal/subtitle"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeSynth отвечает текстом реплики, падает на текстах с "fail" и зависает на "hang".
type fakeSynth struct {
	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	switch {
	case strings.Contains(text, "fail"):
		return nil, &tts.ProviderError{Provider: "fake", Err: errors.New("invalid text")}
	case strings.Contains(text, "hang"):
		<-ctx.Done()
		return nil, tts.Fail("fake", ctx.Err())
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return []byte(voice + ":" + text), nil
}

func cues(texts ...string) []subtitle.Cue {
	out := make([]subtitle.Cue, len(texts))
	for i, t := range texts {
		out[i] = subtitle.Cue{Index: i + 1, Start: time.Duration(i) * time.Second, Text: t}
	}
	return out
}

func newStore(t *testing.T) *clipstore.Store {
	t.Helper()
	s, err := clipstore.New(t.TempDir(), "mp3")
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRunContinuesAfterFailure(t *testing.T) {
	store := newStore(t)
	core, logs := observer.New(zap.WarnLevel)
	st := New(&fakeSynth{}, store, Options{Voice: "Matthew", Workers: 2, Timeout: time.Second}, zap.New(core).Sugar())

	rep := st.Run(context.Background(), cues("one", "fail two", "three"))

	if rep.Succeeded() != 2 {
		t.Errorf("Succeeded() = %d, want 2", rep.Succeeded())
	}
	failed := rep.Failed()
	if len(failed) != 1 || failed[0].Index != 2 {
		t.Fatalf("Failed() = %+v", failed)
	}
	var pe *tts.ProviderError
	if !errors.As(failed[0].Err, &pe) {
		t.Errorf("failure = %v, want ProviderError", failed[0].Err)
	}
	if store.Has(2) || !store.Has(1) || !store.Has(3) {
		t.Error("unexpected clips in store")
	}
	if logs.FilterMessage("Synthesis failed").Len() != 1 {
		t.Errorf("failure not logged: %v", logs.All())
	}
	if rep.Err() != nil {
		t.Errorf("Err() = %v", rep.Err())
	}
	for i, r := range rep.Results {
		if r.Index != i+1 {
			t.Errorf("results not ordered by index: %+v", rep.Results)
		}
	}
}

func TestRunBoundedConcurrency(t *testing.T) {
	synth := &fakeSynth{delay: 20 * time.Millisecond}
	st := New(synth, newStore(t), Options{Voice: "v", Workers: 2, Timeout: time.Second}, nil)

	rep := st.Run(context.Background(), cues("a", "b", "c", "d", "e", "f"))
	if rep.Succeeded() != 6 {
		t.Fatalf("Succeeded() = %d", rep.Succeeded())
	}
	if p := synth.peak.Load(); p > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", p)
	}
}

func TestRunTimeoutIsPerCueFailure(t *testing.T) {
	st := New(&fakeSynth{}, newStore(t), Options{Voice: "v", Workers: 2, Timeout: 20 * time.Millisecond}, nil)

	rep := st.Run(context.Background(), cues("ok", "hang"))
	failed := rep.Failed()
	if len(failed) != 1 || failed[0].Index != 2 {
		t.Fatalf("Failed() = %+v", failed)
	}
	if !errors.Is(failed[0].Err, errTimeout) {
		t.Errorf("error = %v, want timeout", failed[0].Err)
	}
}

func TestRunNothingSynthesized(t *testing.T) {
	st := New(&fakeSynth{}, newStore(t), Options{Voice: "v", Workers: 1, Timeout: time.Second}, nil)
	rep := st.Run(context.Background(), cues("fail", "fail too"))
	if !errors.Is(rep.Err(), ErrNothingSynthesized) {
		t.Errorf("Err() = %v, want ErrNothingSynthesized", rep.Err())
	}
}

func TestRunSkipExisting(t *testing.T) {
	store := newStore(t)
	if err := store.Save(1, []byte("cached")); err != nil {
		t.Fatal(err)
	}
	synth := &fakeSynth{}
	st := New(synth, store, Options{Voice: "v", Workers: 1, Timeout: time.Second, SkipExisting: true}, nil)

	rep := st.Run(context.Background(), cues("one", "two"))
	if !rep.Results[0].Reused || rep.Results[1].Reused {
		t.Errorf("Results = %+v", rep.Results)
	}
	if len(synth.calls) != 1 || synth.calls[0] != "two" {
		t.Errorf("calls = %v, want only the missing cue", synth.calls)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	synth := &fakeSynth{}
	st := New(synth, newStore(t), Options{Voice: "v", Workers: 1, Timeout: time.Second}, nil)

	rep := st.Run(ctx, cues("one", "two"))
	if len(rep.Failed()) != 2 || len(synth.calls) != 0 {
		t.Errorf("cancelled run: failed=%d calls=%d", len(rep.Failed()), len(synth.calls))
	}
	if !errors.Is(rep.Failed()[0].Err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", rep.Failed()[0].Err)
	}
}
