// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

package ratings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/moodscreen/moodscreen/internal/config"
	"github.com/moodscreen/moodscreen/internal/profile"
	"github.com/moodscreen/moodscreen/internal/vector"
)

// recordingUpdater captures warm update calls.
type recordingUpdater struct {
	mu    sync.Mutex
	calls []updateCall
	err   error
}

type updateCall struct {
	userID  string
	ratings []profile.Rating
}

func (r *recordingUpdater) WarmUpdate(_ context.Context, userID string, ratings []profile.Rating) (vector.Vector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, updateCall{userID: userID, ratings: ratings})
	if r.err != nil {
		return nil, r.err
	}
	return vector.Vector{1}, nil
}

func (r *recordingUpdater) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recordingUpdater) call(i int) updateCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[i]
}

// recordingInvalidator captures cache invalidations.
type recordingInvalidator struct {
	mu    sync.Mutex
	users []string
}

func (r *recordingInvalidator) InvalidateUser(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
}

func (r *recordingInvalidator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func newTestPipeline(t *testing.T, threshold int) *Pipeline {
	t.Helper()
	p, err := NewPipeline(&config.RatingsConfig{UpdateThreshold: threshold, BufferSize: 16})
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func startConsumer(t *testing.T, updater ProfileUpdater, inv Invalidator, threshold int) *Pipeline {
	t.Helper()
	p := newTestPipeline(t, threshold)

	c := NewConsumer(p, updater, inv, threshold)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = c.Serve(ctx) }()

	return p
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestConsumerTriggersUpdateAtThreshold(t *testing.T) {
	updater := &recordingUpdater{}
	inv := &recordingInvalidator{}
	p := startConsumer(t, updater, inv, 3)

	ctx := context.Background()
	for _, ev := range []Event{
		{UserID: "u1", ItemID: "a", Rating: 5},
		{UserID: "u1", ItemID: "b", Rating: 3},
		{UserID: "u1", ItemID: "c", Rating: 4},
	} {
		if err := p.Publish(ctx, ev); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	waitFor(t, func() bool { return updater.callCount() == 1 }, "warm update not triggered")

	call := updater.call(0)
	if call.userID != "u1" || len(call.ratings) != 3 {
		t.Errorf("WarmUpdate(%q, %d ratings), want u1 with 3", call.userID, len(call.ratings))
	}
	if call.ratings[0].ItemID != "a" || call.ratings[0].Rating != 5 {
		t.Errorf("first buffered rating = %+v", call.ratings[0])
	}

	waitFor(t, func() bool { return inv.count() == 1 }, "cache not invalidated")
}

func TestConsumerBuffersBelowThreshold(t *testing.T) {
	updater := &recordingUpdater{}
	p := newTestPipeline(t, 3)

	c := NewConsumer(p, updater, nil, 3)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = c.Serve(ctx) }()

	if err := p.Publish(ctx, Event{UserID: "u1", ItemID: "a", Rating: 5}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := p.Publish(ctx, Event{UserID: "u1", ItemID: "b", Rating: 4}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	waitFor(t, func() bool { return c.Pending("u1") == 2 }, "events not buffered")
	if got := updater.callCount(); got != 0 {
		t.Errorf("WarmUpdate called %d times below threshold", got)
	}
}

func TestConsumerKeepsUsersSeparate(t *testing.T) {
	updater := &recordingUpdater{}
	p := startConsumer(t, updater, nil, 2)

	ctx := context.Background()
	for _, ev := range []Event{
		{UserID: "u1", ItemID: "a", Rating: 5},
		{UserID: "u2", ItemID: "b", Rating: 4},
		{UserID: "u1", ItemID: "c", Rating: 3},
	} {
		if err := p.Publish(ctx, ev); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	waitFor(t, func() bool { return updater.callCount() == 1 }, "warm update not triggered")
	if call := updater.call(0); call.userID != "u1" {
		t.Errorf("WarmUpdate user = %q, want u1", call.userID)
	}
}

func TestConsumerDropsInvalidEvents(t *testing.T) {
	updater := &recordingUpdater{}
	p := startConsumer(t, updater, nil, 1)

	ctx := context.Background()
	for _, ev := range []Event{
		{UserID: "", ItemID: "a", Rating: 5},
		{UserID: "u1", ItemID: "", Rating: 5},
		{UserID: "u1", ItemID: "a", Rating: 0},
	} {
		if err := p.Publish(ctx, ev); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}
	if err := p.Publish(ctx, Event{UserID: "u1", ItemID: "a", Rating: 5}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	waitFor(t, func() bool { return updater.callCount() == 1 }, "valid event not consumed")
	if call := updater.call(0); len(call.ratings) != 1 {
		t.Errorf("WarmUpdate got %d ratings, want only the valid one", len(call.ratings))
	}
}

func TestConsumerReceivesEventsPublishedBeforeStart(t *testing.T) {
	updater := &recordingUpdater{}
	p := newTestPipeline(t, 1)

	// The subscription is registered by the pipeline itself, so an
	// event accepted before the consumer service is running must be
	// buffered, not dropped.
	if err := p.Publish(context.Background(), Event{UserID: "u1", ItemID: "a", Rating: 5}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	c := NewConsumer(p, updater, nil, 1)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = c.Serve(ctx) }()

	waitFor(t, func() bool { return updater.callCount() == 1 }, "event published before consumer start was lost")
}

func TestConsumerResumesAfterRestart(t *testing.T) {
	updater := &recordingUpdater{}
	p := newTestPipeline(t, 1)
	c := NewConsumer(p, updater, nil, 1)

	ctx1, cancel1 := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { _ = c.Serve(ctx1); close(done) }()

	if err := p.Publish(context.Background(), Event{UserID: "u1", ItemID: "a", Rating: 5}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	waitFor(t, func() bool { return updater.callCount() == 1 }, "first event not consumed")

	// Stop the consumer, publish while it is down, and restart it the
	// way the supervisor would.
	cancel1()
	<-done
	if err := p.Publish(context.Background(), Event{UserID: "u1", ItemID: "b", Rating: 4}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	ctx2, cancel2 := context.WithCancel(context.Background())
	t.Cleanup(cancel2)
	go func() { _ = c.Serve(ctx2) }()

	waitFor(t, func() bool { return updater.callCount() == 2 }, "event published while consumer was down was lost")
	if call := updater.call(1); call.ratings[0].ItemID != "b" {
		t.Errorf("resumed batch = %+v, want item b", call.ratings)
	}
}

func TestConsumerDropsBatchOnUpdateFailure(t *testing.T) {
	updater := &recordingUpdater{err: context.DeadlineExceeded}
	p := startConsumer(t, updater, nil, 1)

	ctx := context.Background()
	if err := p.Publish(ctx, Event{UserID: "u1", ItemID: "a", Rating: 5}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	waitFor(t, func() bool { return updater.callCount() == 1 }, "warm update not attempted")

	// The failed batch is not retried; the next event starts fresh.
	if err := p.Publish(ctx, Event{UserID: "u1", ItemID: "b", Rating: 4}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	waitFor(t, func() bool { return updater.callCount() == 2 }, "second update not attempted")
	if call := updater.call(1); len(call.ratings) != 1 || call.ratings[0].ItemID != "b" {
		t.Errorf("second batch = %+v, want just item b", call.ratings)
	}
}
