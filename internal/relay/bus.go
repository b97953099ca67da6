package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

type envelope struct {
	id      string
	ctx     context.Context
	payload []byte
	reply   chan result
}

type result struct {
	payload []byte
	err     error
}

// Bus carries encoded requests from senders to a serving Handler and the
// encoded replies back. Every send awaits a reply or an error.
type Bus struct {
	requests chan envelope
	ready    chan struct{}
	done     chan struct{}
	log      zerolog.Logger

	mu      sync.Mutex
	serving bool
	closed  bool
	wg      conc.WaitGroup
}

// NewBus creates an idle bus; call Serve to attach a handler
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		requests: make(chan envelope),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
		log:      log,
	}
}

// Serve dispatches requests to h until ctx is done or the bus is closed.
// Each request runs on its own goroutine; Serve waits for all of them
// before returning. Cancelling ctx closes the bus.
func (b *Bus) Serve(ctx context.Context, h Handler) error {
	b.mu.Lock()
	switch {
	case b.closed:
		b.mu.Unlock()
		return ErrNoReceiver
	case b.serving:
		b.mu.Unlock()
		return errors.New("bus is already being served")
	}
	b.serving = true
	close(b.ready)
	b.mu.Unlock()

	defer b.wg.Wait()

	for {
		select {
		case env := <-b.requests:
			b.wg.Go(func() {
				env.reply <- b.handle(env, h)
			})
		case <-ctx.Done():
			b.Close()
			return ctx.Err()
		case <-b.done:
			return nil
		}
	}
}

func (b *Bus) handle(env envelope, h Handler) (res result) {
	var pc panics.Catcher
	pc.Try(func() {
		res = b.dispatch(env, h)
	})
	if r := pc.Recovered(); r != nil {
		b.log.Error().Str("request", env.id).Interface("panic", r.Value).Msg("handler panicked")
		res = result{err: fmt.Errorf("handler panicked: %v", r.Value)}
	}
	return res
}

func (b *Bus) dispatch(env envelope, h Handler) result {
	req, err := Decode(env.payload)
	if err != nil {
		return result{err: err}
	}

	log := b.log.With().Str("request", env.id).Str("type", string(req.Type())).Logger()
	log.Debug().Msg("dispatch")

	resp, err := req.dispatch(env.ctx, h)
	if err != nil {
		log.Warn().Err(err).Msg("request failed")
		return result{err: err}
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return result{err: fmt.Errorf("failed to encode %s reply: %w", req.Type(), err)}
	}
	return result{payload: payload}
}

// Ready is closed once Serve has started
func (b *Bus) Ready() <-chan struct{} {
	return b.ready
}

// Send delivers req and waits for the encoded reply
func (b *Bus) Send(ctx context.Context, req Request) ([]byte, error) {
	payload, err := Encode(req)
	if err != nil {
		return nil, err
	}
	return b.SendRaw(ctx, payload)
}

// SendRaw delivers an already encoded message
func (b *Bus) SendRaw(ctx context.Context, payload []byte) ([]byte, error) {
	b.mu.Lock()
	ready := b.serving && !b.closed
	b.mu.Unlock()
	if !ready {
		return nil, ErrNoReceiver
	}

	env := envelope{
		id:      uuid.NewString(),
		ctx:     ctx,
		payload: payload,
		reply:   make(chan result, 1),
	}

	select {
	case b.requests <- env:
	case <-b.done:
		return nil, ErrNoReceiver
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-env.reply:
		return res.payload, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting requests. In-flight requests still complete.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}
