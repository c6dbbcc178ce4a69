// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package ratings is the asynchronous rating pipeline. Submitted
// ratings are published to an in-process pub/sub; a supervised
// consumer buffers them per user and triggers a warm profile update
// once a user reaches the configured threshold.
package ratings

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/moodscreen/moodscreen/internal/config"
	"github.com/moodscreen/moodscreen/internal/logging"
	"github.com/moodscreen/moodscreen/internal/metrics"
)

// TopicRatings is the pub/sub topic for submitted ratings.
const TopicRatings = "ratings.submitted"

// Event is a single rating submission.
type Event struct {
	UserID string  `json:"user_id"`
	ItemID string  `json:"movie_id"`
	Rating float64 `json:"rating"`
}

// Pipeline owns the gochannel pub/sub shared by the publisher side
// (HTTP handlers) and the consumer service.
type Pipeline struct {
	pubsub   *gochannel.GoChannel
	messages <-chan *message.Message
}

// NewPipeline creates a Pipeline with the configured buffer size.
//
// The subscription is registered here, before any handler can publish:
// gochannel delivers only to subscribers that exist at publish time,
// so a subscription opened later (the consumer starting up, or being
// restarted by the supervisor) would silently miss events accepted in
// the meantime.
func NewPipeline(cfg *config.RatingsConfig) (*Pipeline, error) {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: int64(cfg.BufferSize)},
		newWatermillLogger(),
	)
	messages, err := pubsub.Subscribe(context.Background(), TopicRatings)
	if err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to rating events: %w", err)
	}
	return &Pipeline{pubsub: pubsub, messages: messages}, nil
}

// Publish serializes and publishes a rating event.
func (p *Pipeline) Publish(_ context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal rating event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	if err := p.pubsub.Publish(TopicRatings, msg); err != nil {
		return fmt.Errorf("publish rating event: %w", err)
	}

	metrics.RatingEventsPublished.Inc()
	return nil
}

// Subscribe returns the rating event stream registered at
// construction. The channel survives consumer restarts and closes
// only when the pipeline is closed.
func (p *Pipeline) Subscribe(_ context.Context) (<-chan *message.Message, error) {
	return p.messages, nil
}

// Close shuts down the pub/sub and closes subscriber channels.
func (p *Pipeline) Close() error {
	return p.pubsub.Close()
}

// watermillLogger routes watermill's internal logging through zerolog.
type watermillLogger struct {
	fields watermill.LogFields
}

func newWatermillLogger() watermill.LoggerAdapter {
	return &watermillLogger{}
}

func (l *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	logging.Error().Err(err).Fields(map[string]interface{}(l.fields.Add(fields))).Msg(msg)
}

func (l *watermillLogger) Info(msg string, fields watermill.LogFields) {
	logging.Debug().Fields(map[string]interface{}(l.fields.Add(fields))).Msg(msg)
}

func (l *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	logging.Debug().Fields(map[string]interface{}(l.fields.Add(fields))).Msg(msg)
}

func (l *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	logging.Debug().Fields(map[string]interface{}(l.fields.Add(fields))).Msg(msg)
}

func (l *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{fields: l.fields.Add(fields)}
}
