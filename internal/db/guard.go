package db

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/semaphore"
)

// ErrUnavailable is returned by WithConnection when no store connection exists.
var ErrUnavailable = errors.New("database unavailable")

// State is either Connected or Disconnected.
type State[C any] interface {
	isState()
}

type Connected[C any] struct {
	Conn C
}

func (Connected[C]) isState() {}

type Disconnected[C any] struct {
	Reason string
}

func (Disconnected[C]) isState() {}

// Guard owns the store connection slot. Operations run one at a time: a caller
// holds the slot for the whole operation, so statements issued by concurrent
// requests never interleave. The state is fixed at construction.
type Guard[C any] struct {
	slot  *semaphore.Weighted
	state State[C]
}

func NewGuard[C any](state State[C]) *Guard[C] {
	if state == nil {
		state = Disconnected[C]{Reason: "no connection configured"}
	}
	return &Guard[C]{
		slot:  semaphore.NewWeighted(1),
		state: state,
	}
}

func NewConnectedGuard[C any](conn C) *Guard[C] {
	return NewGuard[C](Connected[C]{Conn: conn})
}

func NewDisconnectedGuard[C any](reason string) *Guard[C] {
	return NewGuard[C](Disconnected[C]{Reason: reason})
}

// WithConnection waits for the slot and runs op with the live connection.
// It returns ErrUnavailable without calling op when disconnected, and the
// context error if ctx ends before the slot is free.
func (g *Guard[C]) WithConnection(ctx context.Context, op func(ctx context.Context, conn C) error) error {
	if err := g.slot.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.slot.Release(1)

	switch s := g.state.(type) {
	case Connected[C]:
		return op(ctx, s.Conn)
	default:
		return ErrUnavailable
	}
}

func (g *Guard[C]) Available() bool {
	_, ok := g.state.(Connected[C])
	return ok
}

// Reason explains why the guard is disconnected. Empty when connected.
func (g *Guard[C]) Reason() string {
	if s, ok := g.state.(Disconnected[C]); ok {
		return s.Reason
	}
	return ""
}

// Close releases the underlying connection if it can be closed.
func (g *Guard[C]) Close() error {
	s, ok := g.state.(Connected[C])
	if !ok {
		return nil
	}
	if closer, ok := any(s.Conn).(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
