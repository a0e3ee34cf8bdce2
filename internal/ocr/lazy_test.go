package ocr

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
)

type stubEngine struct {
	closed atomic.Bool
}

func (s *stubEngine) Recognize(_ context.Context, req Request) ([]Candidate, error) {
	return []Candidate{{Text: req.Field, Confidence: 0.9}}, nil
}

func (s *stubEngine) Tokens(context.Context, image.Image) ([]Token, error) {
	return []Token{{Text: "1", Confidence: 0.8, Box: image.Rect(10, 20, 30, 40)}}, nil
}

func (s *stubEngine) Close() error {
	s.closed.Store(true)
	return nil
}

func TestLazy_ConstructsOnceUnderConcurrency(t *testing.T) {
	var built atomic.Int32
	lazy := NewLazy(func() (Engine, error) {
		built.Add(1)
		return &stubEngine{}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := lazy.Recognize(context.Background(), Request{Field: "surname"}); err != nil {
				t.Errorf("Recognize: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := built.Load(); got != 1 {
		t.Errorf("factory called %d times, want 1", got)
	}
}

func TestLazy_FailureIsRetried(t *testing.T) {
	attempts := 0
	lazy := NewLazy(func() (Engine, error) {
		attempts++
		if attempts == 1 {
			return nil, ErrUnavailable
		}
		return &stubEngine{}, nil
	})

	if err := lazy.Check(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("first Check = %v, want ErrUnavailable", err)
	}
	if err := lazy.Check(context.Background()); err != nil {
		t.Fatalf("second Check = %v, want nil", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestLazy_DelegatesAndCloses(t *testing.T) {
	stub := &stubEngine{}
	lazy := NewLazy(func() (Engine, error) { return stub, nil })

	cands, err := lazy.Recognize(context.Background(), Request{Field: "name"})
	if err != nil || len(cands) != 1 || cands[0].Text != "name" {
		t.Fatalf("Recognize = %v, %v", cands, err)
	}
	tokens, err := lazy.Tokens(context.Background(), image.NewGray(image.Rect(0, 0, 1, 1)))
	if err != nil || len(tokens) != 1 {
		t.Fatalf("Tokens = %v, %v", tokens, err)
	}
	x, y := tokens[0].Center()
	if x != 20 || y != 30 {
		t.Errorf("Center = (%v, %v), want (20, 30)", x, y)
	}

	if info := lazy.Describe(); !info.Available {
		t.Errorf("Describe().Available = false")
	}
	if err := lazy.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !stub.closed.Load() {
		t.Error("engine was not closed")
	}
}

func TestMode_String(t *testing.T) {
	if ModeLine.String() != "line" || ModeDetect.String() != "detect" {
		t.Errorf("unexpected mode names: %s, %s", ModeLine, ModeDetect)
	}
}
