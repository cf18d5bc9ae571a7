package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS.
//
// Session events are ephemeral and go out on core NATS; survey results are
// kept in a JetStream stream so late subscribers still see them.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the survey stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "AGRISHIELD_SURVEYS",
		Subjects:  []string{subjectSurveyPrefix + ">"},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishBoundary(ctx context.Context, sessionID string, boundary domain.Boundary) error {
	return p.publishSession(SessionEvent{
		Type:      EventBoundary,
		SessionID: sessionID,
		Boundary:  boundary,
		At:        time.Now().UTC(),
	})
}

func (p *Publisher) PublishAnalysis(ctx context.Context, sessionID string, result domain.AnalysisResult, category domain.HealthCategory) error {
	return p.publishSession(SessionEvent{
		Type:      EventAnalysis,
		SessionID: sessionID,
		Result:    &result,
		Category:  category,
		At:        time.Now().UTC(),
	})
}

func (p *Publisher) publishSession(ev SessionEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.conn.Publish(SessionSubject(ev.SessionID, ev.Type), data)
}

func (p *Publisher) PublishSurvey(ctx context.Context, survey *domain.Survey) error {
	data, err := json.Marshal(survey)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SurveySubject(survey.FieldID), data, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for readiness checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("agrishield"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
