package ocr

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
)

// Factory constructs an engine. It is called at most once per successful
// construction.
type Factory func() (Engine, error)

// Lazy defers engine construction to first use and shares the result.
//
// Construction is guarded by a mutex with a lock-free fast path, so
// concurrent first requests build exactly one engine. A failed
// construction is not cached; the next call tries again. Lazy itself
// implements Engine and Checker and can be injected wherever an Engine is
// expected.
type Lazy struct {
	factory Factory

	mu     sync.Mutex
	engine atomic.Pointer[Engine]
}

// NewLazy returns a Lazy that builds its engine with factory.
func NewLazy(factory Factory) *Lazy {
	return &Lazy{factory: factory}
}

// Get returns the shared engine, constructing it if needed.
func (l *Lazy) Get() (Engine, error) {
	if e := l.engine.Load(); e != nil {
		return *e, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e := l.engine.Load(); e != nil {
		return *e, nil
	}
	e, err := l.factory()
	if err != nil {
		return nil, err
	}
	l.engine.Store(&e)
	return e, nil
}

// Check constructs the engine if needed and runs its own check.
func (l *Lazy) Check(ctx context.Context) error {
	e, err := l.Get()
	if err != nil {
		return err
	}
	if c, ok := e.(Checker); ok {
		return c.Check(ctx)
	}
	return nil
}

// Recognize implements Engine.
func (l *Lazy) Recognize(ctx context.Context, req Request) ([]Candidate, error) {
	e, err := l.Get()
	if err != nil {
		return nil, err
	}
	return e.Recognize(ctx, req)
}

// Tokens implements Engine.
func (l *Lazy) Tokens(ctx context.Context, img image.Image) ([]Token, error) {
	e, err := l.Get()
	if err != nil {
		return nil, err
	}
	return e.Tokens(ctx, img)
}

// Describe reports the engine, constructing it if needed.
func (l *Lazy) Describe() Info {
	e, err := l.Get()
	if err != nil {
		return Info{Backend: "unknown", Available: false, Error: err.Error()}
	}
	if d, ok := e.(Describer); ok {
		return d.Describe()
	}
	return Info{Backend: "unknown", Available: true}
}

// Close releases the engine if it was constructed and supports closing.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.engine.Load()
	if e == nil {
		return nil
	}
	l.engine.Store(nil)
	if c, ok := (*e).(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
