package analysis

import (
	"context"
	"math/rand"
	"time"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

// Simulator implements ports.VegetationAnalyzer without a satellite backend.
// It answers with a healthy-looking value in [0.6, 0.8) after an optional delay.
type Simulator struct {
	delay time.Duration
	now   func() time.Time
	rand  func() float64
}

// NewSimulator creates a simulated analyzer.
func NewSimulator(delay time.Duration) *Simulator {
	return &Simulator{delay: delay, now: time.Now, rand: rand.Float64}
}

func (s *Simulator) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return &domain.AnalysisResult{
		Value:     0.6 + s.rand()*0.2,
		Timestamp: s.now().UTC(),
	}, nil
}
