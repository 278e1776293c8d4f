package internal_dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	internal_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony"
)

var errRejected = errors.New("rejected by provider")

type fakeGateway struct {
	delay    time.Duration
	failFor  map[string]bool
	panicFor map[string]bool

	seq     atomic.Int64
	active  atomic.Int64
	maxSeen atomic.Int64

	mu          sync.Mutex
	placed      []string
	canceled    []string
	cancelFails map[string]bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failFor: map[string]bool{}, panicFor: map[string]bool{}, cancelFails: map[string]bool{}}
}

func (f *fakeGateway) Name() string { return "fake" }

func (f *fakeGateway) Place(ctx context.Context, req internal_telephony.PlaceRequest) (string, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.panicFor[req.To] {
		panic("gateway exploded for " + req.To)
	}
	if f.failFor[req.To] {
		return "", internal_telephony.ProviderError("create call", errRejected)
	}
	id := fmt.Sprintf("CA%04d", f.seq.Add(1))
	f.mu.Lock()
	f.placed = append(f.placed, req.To)
	f.mu.Unlock()
	return id, nil
}

func (f *fakeGateway) Cancel(ctx context.Context, callID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelFails[callID] {
		return internal_telephony.ProviderError("cancel call", errRejected)
	}
	f.canceled = append(f.canceled, callID)
	return nil
}

type countingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
	err    error
}

func (s *countingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	if s.err != nil {
		return s.err
	}
	return ctx.Err()
}

func (s *countingSleeper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delays)
}

type staticCallbacks struct{}

func (staticCallbacks) For(name, message string) internal_telephony.CallbackURLs {
	return internal_telephony.CallbackURLs{Answer: "https://calls.example.com/handle-call?name=" + name}
}
