package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

// Subscriber consumes survey results from JetStream and session events from core NATS.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext

	mu   sync.Mutex
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeSurveys delivers every survey result to handler. Messages the
// handler fails on are redelivered up to three times.
func (s *Subscriber) SubscribeSurveys(ctx context.Context, handler func(ctx context.Context, survey *domain.Survey) error) error {
	sub, err := s.js.Subscribe(subjectSurveyPrefix+">", func(msg *nats.Msg) {
		var survey domain.Survey
		if err := json.Unmarshal(msg.Data, &survey); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &survey); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("survey-recorder"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.track(sub)
	return nil
}

// SubscribeSession relays the raw payload of every event for one session.
// The returned function unsubscribes.
func (s *Subscriber) SubscribeSession(sessionID string, handler func(data []byte)) (func(), error) {
	sub, err := s.conn.Subscribe(SessionWildcard(sessionID), func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

func (s *Subscriber) track(sub *nats.Subscription) {
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	s.mu.Lock()
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	s.subs = nil
	s.mu.Unlock()
	_ = s.conn.Drain()
}
