package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/ports"
	"github.com/kunaldubey10/Agrishield/internal/pkg/metrics"
)

// FieldInput names a field saved from a session's selection.
type FieldInput struct {
	Name            string  `json:"name"`
	Location        string  `json:"location"`
	SoilType        string  `json:"soil_type"`
	LastPlantedDate *string `json:"last_planted_date"`
}

// FieldService handles saved field boundaries.
type FieldService struct {
	fields    ports.FieldRepository
	sessions  *SessionService
	scheduler ports.SurveyScheduler
	cache     ports.CacheService
	now       func() time.Time
}

// NewFieldService creates a new FieldService. A nil scheduler disables
// surveys; a nil cache disables LatestSurvey.
func NewFieldService(fields ports.FieldRepository, sessions *SessionService, scheduler ports.SurveyScheduler, cache ports.CacheService) *FieldService {
	return &FieldService{fields: fields, sessions: sessions, scheduler: scheduler, cache: cache, now: time.Now}
}

// SaveSelection stores the session's active boundary as a named field.
func (s *FieldService) SaveSelection(ctx context.Context, sessionID string, in FieldInput) (*domain.Field, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	boundary := sess.Boundary()
	if boundary.Empty() {
		return nil, domain.ErrNoSelection
	}
	return s.Create(ctx, boundary, in)
}

// Create stores a named field for the given boundary.
func (s *FieldService) Create(ctx context.Context, boundary domain.Boundary, in FieldInput) (*domain.Field, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &domain.ValidationError{Message: "Field name is required"}
	}
	if len(boundary) < 3 {
		return nil, fmt.Errorf("%w: a field needs at least 3 points", domain.ErrInvalidShape)
	}
	if in.LastPlantedDate != nil {
		if _, err := time.Parse(domain.DateLayout, *in.LastPlantedDate); err != nil {
			return nil, &domain.ValidationError{Message: "last_planted_date must be YYYY-MM-DD"}
		}
	}

	field := &domain.Field{
		ID:              uuid.NewString(),
		Name:            name,
		Location:        strings.TrimSpace(in.Location),
		Boundary:        boundary.Clone(),
		SizeAcres:       math.Round(boundary.AreaAcres()*100) / 100,
		SoilType:        strings.TrimSpace(in.SoilType),
		LastPlantedDate: in.LastPlantedDate,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.fields.Create(ctx, field); err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}
	return field, nil
}

// GetByID returns a saved field.
func (s *FieldService) GetByID(ctx context.Context, id string) (*domain.Field, error) {
	return s.fields.GetByID(ctx, id)
}

// List returns a page of saved fields and the total count.
func (s *FieldService) List(ctx context.Context, offset, limit int) ([]domain.Field, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.fields.List(ctx, offset, limit)
}

// Delete removes a saved field.
func (s *FieldService) Delete(ctx context.Context, id string) error {
	return s.fields.Delete(ctx, id)
}

// StartSurvey schedules a background analysis of a saved field.
func (s *FieldService) StartSurvey(ctx context.Context, id string, dates domain.DateRange) (string, error) {
	if s.scheduler == nil {
		return "", domain.ErrSurveysDisabled
	}
	if !dates.Complete() {
		dates = domain.DefaultDateRange(s.now())
	}
	if err := domain.ValidateDateRange(dates, s.now()); err != nil {
		return "", err
	}
	if _, err := s.fields.GetByID(ctx, id); err != nil {
		return "", err
	}
	runID, err := s.scheduler.StartSurvey(ctx, id, dates)
	if err != nil {
		return "", fmt.Errorf("start survey: %w", err)
	}
	metrics.SurveysStarted.Inc()
	return runID, nil
}

const surveyCacheTTL = 7 * 24 * 60 * 60

func surveyKey(fieldID string) string { return "survey:latest:" + fieldID }

// RecordSurvey keeps a completed survey as the field's latest.
func (s *FieldService) RecordSurvey(ctx context.Context, survey *domain.Survey) error {
	if s.cache == nil {
		return nil
	}
	data, err := json.Marshal(survey)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, surveyKey(survey.FieldID), data, surveyCacheTTL)
}

// LatestSurvey returns the most recent survey recorded for a field.
func (s *FieldService) LatestSurvey(ctx context.Context, fieldID string) (*domain.Survey, error) {
	if s.cache == nil {
		return nil, domain.ErrNotFound
	}
	data, err := s.cache.Get(ctx, surveyKey(fieldID))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var survey domain.Survey
	if err := json.Unmarshal(data, &survey); err != nil {
		return nil, fmt.Errorf("decode survey: %w", err)
	}
	return &survey, nil
}
