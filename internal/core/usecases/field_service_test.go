package usecases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/usecases"
)

func TestFieldService_SaveSelection(t *testing.T) {
	sessions := newTestSessions(t, nil)
	sess, err := sessions.Create(context.Background())
	require.NoError(t, err)
	repo := newMockFieldRepo()
	svc := usecases.NewFieldService(repo, sessions, nil, nil)

	_, err = svc.SaveSelection(context.Background(), sess.ID, usecases.FieldInput{Name: "North plot"})
	assert.ErrorIs(t, err, domain.ErrNoSelection)

	_, _, err = sessions.Draw(sess.ID, rectangle("", domain.LatLng{Lat: 0, Lng: 0}, domain.LatLng{Lat: 0.01, Lng: 0.01}))
	require.NoError(t, err)

	_, err = svc.SaveSelection(context.Background(), sess.ID, usecases.FieldInput{Name: "  "})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	field, err := svc.SaveSelection(context.Background(), sess.ID, usecases.FieldInput{Name: " North plot ", SoilType: "Loam"})
	require.NoError(t, err)
	assert.Equal(t, "North plot", field.Name)
	assert.Len(t, field.Boundary, 4)
	assert.InDelta(t, 305, field.SizeAcres, 6)

	got, err := svc.GetByID(context.Background(), field.ID)
	require.NoError(t, err)
	assert.Equal(t, "Loam", got.SoilType)
}

func TestFieldService_RejectsBadPlantedDate(t *testing.T) {
	svc := usecases.NewFieldService(newMockFieldRepo(), nil, nil, nil)
	bad := "March"
	_, err := svc.Create(context.Background(), domain.Boundary{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}}, usecases.FieldInput{Name: "x", LastPlantedDate: &bad})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestFieldService_ListClampsLimit(t *testing.T) {
	repo := newMockFieldRepo()
	svc := usecases.NewFieldService(repo, nil, nil, nil)
	ring := domain.Boundary{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}}
	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.Create(context.Background(), ring, usecases.FieldInput{Name: name})
		require.NoError(t, err)
	}

	fields, total, err := svc.List(context.Background(), -5, 1000)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, fields, 3)

	fields, _, err = svc.List(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Len(t, fields, 1)
}

func TestFieldService_StartSurvey(t *testing.T) {
	repo := newMockFieldRepo()
	ring := domain.Boundary{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}}

	disabled := usecases.NewFieldService(repo, nil, nil, nil)
	_, err := disabled.StartSurvey(context.Background(), "x", domain.DateRange{})
	assert.ErrorIs(t, err, domain.ErrSurveysDisabled)

	sched := &mockScheduler{}
	svc := usecases.NewFieldService(repo, nil, sched, nil)
	field, err := svc.Create(context.Background(), ring, usecases.FieldInput{Name: "East"})
	require.NoError(t, err)

	_, err = svc.StartSurvey(context.Background(), "missing", domain.DateRange{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	runID, err := svc.StartSurvey(context.Background(), field.ID, domain.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)
	assert.Equal(t, field.ID, sched.fieldID)
	assert.True(t, sched.dates.Complete(), "defaults to the last 30 days")
}

func TestFieldService_Delete(t *testing.T) {
	repo := newMockFieldRepo()
	svc := usecases.NewFieldService(repo, nil, nil, nil)
	field, err := svc.Create(context.Background(), domain.Boundary{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}}, usecases.FieldInput{Name: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), field.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), field.ID), domain.ErrNotFound)
}

func TestFieldService_LatestSurvey(t *testing.T) {
	svc := usecases.NewFieldService(newMockFieldRepo(), nil, nil, newMemCache())

	_, err := svc.LatestSurvey(context.Background(), "f1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	survey := &domain.Survey{FieldID: "f1", Category: domain.HealthGood, Result: domain.AnalysisResult{Value: 0.5}}
	require.NoError(t, svc.RecordSurvey(context.Background(), survey))

	got, err := svc.LatestSurvey(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, domain.HealthGood, got.Category)
	assert.Equal(t, 0.5, got.Result.Value)
}
