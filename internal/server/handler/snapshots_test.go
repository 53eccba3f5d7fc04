package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioscope/internal/domain"
)

type fakeSnapshotService struct {
	snapshots []domain.Snapshot
	taken     int
	since     time.Time
	limit     int
}

func (f *fakeSnapshotService) Take(ctx context.Context) (domain.Snapshot, error) {
	f.taken++
	return domain.Snapshot{ID: "snap-1", TakenAt: time.Now(), TotalValue: 1234.5}, nil
}

func (f *fakeSnapshotService) List(ctx context.Context, since time.Time, limit int) ([]domain.Snapshot, error) {
	f.since = since
	f.limit = limit
	return f.snapshots, nil
}

func TestTriggerSnapshot(t *testing.T) {
	svc := &fakeSnapshotService{}
	h := NewSnapshotHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/snapshots/trigger", nil)
	rec := httptest.NewRecorder()

	h.TriggerSnapshot(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, svc.taken)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "snap-1", snap.ID)
	assert.Equal(t, 1234.5, snap.TotalValue)
}

func TestListSnapshotsWindow(t *testing.T) {
	svc := &fakeSnapshotService{}
	h := NewSnapshotHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/snapshots?days=7&limit=10", nil)
	rec := httptest.NewRecorder()

	h.ListSnapshots(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, svc.limit)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -7), svc.since, time.Minute)
}

func TestListSnapshotsDefaultsWindow(t *testing.T) {
	svc := &fakeSnapshotService{}
	h := NewSnapshotHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/snapshots?days=-3", nil)
	rec := httptest.NewRecorder()

	h.ListSnapshots(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -30), svc.since, time.Minute)
}
