// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

package ratings

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/moodscreen/moodscreen/internal/logging"
	"github.com/moodscreen/moodscreen/internal/metrics"
	"github.com/moodscreen/moodscreen/internal/profile"
	"github.com/moodscreen/moodscreen/internal/vector"
)

// ProfileUpdater applies accumulated ratings to a user profile.
// Satisfied by *profile.Blender.
type ProfileUpdater interface {
	WarmUpdate(ctx context.Context, userID string, ratings []profile.Rating) (vector.Vector, error)
}

// Invalidator drops cached recommendations after a profile write.
// Satisfied by *recommend.Engine.
type Invalidator interface {
	InvalidateUser(userID string)
}

// Subscriber is the message source for the consumer. Satisfied by
// *Pipeline.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// Consumer buffers rating events per user and runs a warm profile
// update when a user's buffer reaches the threshold. It runs as a
// supervised service.
type Consumer struct {
	sub       Subscriber
	updater   ProfileUpdater
	inv       Invalidator
	threshold int

	mu      sync.Mutex
	buffers map[string][]profile.Rating
}

// NewConsumer creates a Consumer. inv may be nil when no cache needs
// invalidation.
func NewConsumer(sub Subscriber, updater ProfileUpdater, inv Invalidator, threshold int) *Consumer {
	if threshold <= 0 {
		threshold = 1
	}
	return &Consumer{
		sub:       sub,
		updater:   updater,
		inv:       inv,
		threshold: threshold,
		buffers:   make(map[string][]profile.Rating),
	}
}

// Serve implements suture.Service. It consumes rating events until the
// context is canceled or the subscription channel closes.
func (c *Consumer) Serve(ctx context.Context) error {
	messages, err := c.sub.Subscribe(ctx)
	if err != nil {
		return err
	}

	logging.Info().Int("threshold", c.threshold).Msg("Rating consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.handle(ctx, msg)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (c *Consumer) String() string {
	return "rating-consumer"
}

// Pending reports the number of buffered ratings for a user.
func (c *Consumer) Pending(userID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffers[userID])
}

func (c *Consumer) handle(ctx context.Context, msg *message.Message) {
	// Malformed or invalid events are acked so they are not redelivered.
	defer msg.Ack()

	var ev Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		metrics.RatingEventsDropped.Inc()
		logging.Warn().Str("message_uuid", msg.UUID).Err(err).Msg("Failed to parse rating event")
		return
	}
	if ev.UserID == "" || ev.ItemID == "" || ev.Rating <= 0 {
		metrics.RatingEventsDropped.Inc()
		logging.Warn().Str("message_uuid", msg.UUID).Str("user_id", ev.UserID).
			Msg("Dropping invalid rating event")
		return
	}

	metrics.RatingEventsConsumed.Inc()

	batch := c.buffer(ev)
	if batch == nil {
		return
	}

	if _, err := c.updater.WarmUpdate(ctx, ev.UserID, batch); err != nil {
		metrics.RatingEventsDropped.Add(float64(len(batch)))
		logging.Warn().Err(err).Str("user_id", ev.UserID).Int("ratings", len(batch)).
			Msg("Warm profile update failed, batch dropped")
		return
	}
	if c.inv != nil {
		c.inv.InvalidateUser(ev.UserID)
	}

	logging.Debug().Str("user_id", ev.UserID).Int("ratings", len(batch)).
		Msg("Warm profile update applied")
}

// buffer appends the event and, when the user's buffer reaches the
// threshold, drains and returns it. Returns nil while below threshold.
func (c *Consumer) buffer(ev Event) []profile.Rating {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.buffers[ev.UserID] = append(c.buffers[ev.UserID], profile.Rating{
		ItemID: ev.ItemID,
		Rating: ev.Rating,
	})
	if len(c.buffers[ev.UserID]) < c.threshold {
		return nil
	}

	batch := c.buffers[ev.UserID]
	delete(c.buffers, ev.UserID)
	return batch
}
