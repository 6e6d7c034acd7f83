package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/scoring"
)

// In-memory fakes over the db interfaces

type fakeAssetStore struct {
	assets []models.Asset
}

func (f *fakeAssetStore) InsertAsset(ctx context.Context, asset models.Asset) error {
	f.assets = append(f.assets, asset)
	return nil
}

func (f *fakeAssetStore) FindAssets(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.AssetCursor, error) {
	return &fakeAssetCursor{assets: f.assets}, nil
}

func (f *fakeAssetStore) FindAssetByID(ctx context.Context, id string) (*models.Asset, error) {
	for i := range f.assets {
		if f.assets[i].ID.Hex() == id {
			return &f.assets[i], nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeAssetStore) RecordUsageReading(ctx context.Context, id string, reading float64) error {
	return nil
}

type fakeAssetCursor struct{ assets []models.Asset }

func (c *fakeAssetCursor) All(ctx context.Context, out interface{}) error {
	*(out.(*[]models.Asset)) = c.assets
	return nil
}
func (c *fakeAssetCursor) Close(ctx context.Context) error { return nil }

type fakeRecordStore struct {
	records []models.ServiceRecord
}

func (f *fakeRecordStore) InsertServiceRecord(ctx context.Context, rec models.ServiceRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRecordStore) FindServiceRecords(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.ServiceRecordCursor, error) {
	matched := f.records
	if m, ok := filter.(bson.M); ok {
		if assetID, ok := m["asset_id"].(string); ok {
			matched = nil
			for _, rec := range f.records {
				if rec.AssetID == assetID {
					matched = append(matched, rec)
				}
			}
		}
	}
	return &fakeRecordCursor{records: matched}, nil
}

type fakeRecordCursor struct{ records []models.ServiceRecord }

func (c *fakeRecordCursor) All(ctx context.Context, out interface{}) error {
	*(out.(*[]models.ServiceRecord)) = c.records
	return nil
}
func (c *fakeRecordCursor) Close(ctx context.Context) error { return nil }

type fakeEventStore struct {
	events []models.MaintenanceEvent
}

func (f *fakeEventStore) InsertEvent(ctx context.Context, event models.MaintenanceEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventStore) FindEvents(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.EventCursor, error) {
	matched := f.events
	if m, ok := filter.(bson.M); ok {
		if assetID, ok := m["asset_id"].(string); ok {
			matched = nil
			for _, ev := range f.events {
				if ev.AssetID == assetID {
					matched = append(matched, ev)
				}
			}
		}
	}
	return &fakeEventCursor{events: matched}, nil
}

func (f *fakeEventStore) CloseRequest(ctx context.Context, id string, closedAt string) error {
	for i := range f.events {
		ev := &f.events[i]
		if ev.ID.Hex() == id && ev.Kind == models.KindRequest && ev.Request != nil {
			at := closedAt
			ev.Request.Status = "Closed"
			ev.Request.ClosedAt = &at
			return nil
		}
	}
	return db.ErrNotFound
}

type fakeEventCursor struct{ events []models.MaintenanceEvent }

func (c *fakeEventCursor) All(ctx context.Context, out interface{}) error {
	*(out.(*[]models.MaintenanceEvent)) = c.events
	return nil
}
func (c *fakeEventCursor) Close(ctx context.Context) error { return nil }

type fakeUserStore struct {
	users []models.User
}

func (f *fakeUserStore) InsertUser(ctx context.Context, user models.User) error {
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return nil, db.ErrNotFound
}

func (f *fakeUserStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].Username == username {
			return &f.users[i], nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeUserStore) FindUsers(ctx context.Context, filter interface{}) (db.UserCursor, error) {
	return &fakeUserCursor{users: f.users}, nil
}

func (f *fakeUserStore) UpdateLastLogin(ctx context.Context, id string) error { return nil }

type fakeUserCursor struct{ users []models.User }

func (c *fakeUserCursor) All(ctx context.Context, out interface{}) error {
	*(out.(*[]models.User)) = c.users
	return nil
}
func (c *fakeUserCursor) Close(ctx context.Context) error { return nil }

func newTestDashboard(assets *fakeAssetStore, records *fakeRecordStore, events *fakeEventStore, users *fakeUserStore) *DashboardHandler {
	h := NewDashboardHandler(assets, records, events, users)
	h.now = func() time.Time {
		return time.Date(2025, time.June, 11, 12, 0, 0, 0, time.Local)
	}
	return h
}

func usagePtr(v float64) *float64 { return &v }

func TestPMBoard(t *testing.T) {
	overdueID := primitive.NewObjectID()
	onTrackID := primitive.NewObjectID()
	assets := &fakeAssetStore{assets: []models.Asset{
		{ID: overdueID, Name: "Truck 07", Category: models.CategoryVehicle, UsageCounter: usagePtr(5900), Status: models.StatusActive},
		{ID: onTrackID, Name: "Truck 22", Category: models.CategoryVehicle, UsageCounter: usagePtr(1000), Status: models.StatusActive},
	}}
	h := newTestDashboard(assets, &fakeRecordStore{}, &fakeEventStore{}, &fakeUserStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/pm-board", nil)
	rec := httptest.NewRecorder()
	h.PMBoard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []scoring.PMBoardRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, overdueID.Hex(), rows[0].AssetID)
	assert.Equal(t, scoring.PMOverdue, rows[0].Status)
	assert.Equal(t, 900.0, rows[0].OverdueAmount)
}

func TestScoreboard(t *testing.T) {
	mechID := primitive.NewObjectID()
	actor := mechID.Hex()
	reqID := "req-1"
	events := &fakeEventStore{events: []models.MaintenanceEvent{
		{
			Kind:      models.KindLog,
			ActorID:   &actor,
			AssetID:   "a1",
			Timestamp: "2025-06-10T09:00:00Z",
			Log:       &models.LogDetail{RequestID: &reqID, Status: "Closed", Note: "replaced brake pads and bled the lines"},
		},
		// Outside the monthly window, must not count
		{
			Kind:      models.KindLog,
			ActorID:   &actor,
			AssetID:   "a1",
			Timestamp: "2025-04-01T09:00:00Z",
			Log:       &models.LogDetail{Status: "", Note: ""},
		},
	}}
	users := &fakeUserStore{users: []models.User{
		{ID: mechID, Username: "aruiz", FirstName: "Ana", LastName: "Ruiz", Role: models.RoleMechanic},
	}}
	h := newTestDashboard(&fakeAssetStore{}, &fakeRecordStore{}, events, users)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/scoreboard?class=mechanic&period=monthly", nil)
	rec := httptest.NewRecorder()
	h.Scoreboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []scoring.ActorScoreSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana Ruiz", rows[0].DisplayName)
	assert.Equal(t, 1, rows[0].EventCount)
	assert.Equal(t, 100, rows[0].AvgScore)
	assert.Equal(t, scoring.BandGood, rows[0].Band)
}

func TestScoreboard_InvalidParams(t *testing.T) {
	h := newTestDashboard(&fakeAssetStore{}, &fakeRecordStore{}, &fakeEventStore{}, &fakeUserStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/scoreboard?class=janitor", nil)
	rec := httptest.NewRecorder()
	h.Scoreboard(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/dashboard/scoreboard?period=fortnightly", nil)
	rec = httptest.NewRecorder()
	h.Scoreboard(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssetHealth(t *testing.T) {
	assetID := primitive.NewObjectID()
	assets := &fakeAssetStore{assets: []models.Asset{
		{ID: assetID, Name: "Truck 12", Category: models.CategoryVehicle, UsageCounter: usagePtr(1000), Status: models.StatusActive},
	}}
	events := &fakeEventStore{events: []models.MaintenanceEvent{
		{Kind: models.KindRequest, AssetID: assetID.Hex(), Timestamp: "2025-06-10", Request: &models.RequestDetail{Status: "Open", System: "Brakes"}},
	}}
	h := newTestDashboard(assets, &fakeRecordStore{}, events, &fakeUserStore{})

	router := mux.NewRouter()
	router.HandleFunc("/api/assets/{id}/health", h.AssetHealth)
	req := httptest.NewRequest(http.MethodGet, "/api/assets/"+assetID.Hex()+"/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var summary scoring.AssetHealthSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, scoring.PMOnTrack, summary.PMStatus)
	assert.Equal(t, 1, summary.OpenRequests)
	assert.Equal(t, 88.0, summary.OperationalScore)
	// 88*0.8 + 75*0.2
	assert.Equal(t, 85.4, summary.HealthScore)
}

func TestAssetHealth_NotFound(t *testing.T) {
	h := newTestDashboard(&fakeAssetStore{}, &fakeRecordStore{}, &fakeEventStore{}, &fakeUserStore{})

	router := mux.NewRouter()
	router.HandleFunc("/api/assets/{id}/health", h.AssetHealth)
	req := httptest.NewRequest(http.MethodGet, "/api/assets/"+primitive.NewObjectID().Hex()+"/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvents_DropdownKeysFollowFilter(t *testing.T) {
	reqID := "req-7"
	events := &fakeEventStore{events: []models.MaintenanceEvent{
		{Kind: models.KindRequest, AssetID: "a1", Timestamp: "2025-06-10", Request: &models.RequestDetail{Status: "Open", System: "Brakes"}},
		{Kind: models.KindRequest, AssetID: "a2", Timestamp: "2025-06-10", Request: &models.RequestDetail{Status: "Open", System: "Hydraulics"}},
		{Kind: models.KindLog, AssetID: "a1", Timestamp: "2025-06-10", Log: &models.LogDetail{RequestID: &reqID, Status: "Closed", Note: "flushed the brake system today"}},
	}}
	h := newTestDashboard(&fakeAssetStore{}, &fakeRecordStore{}, events, &fakeUserStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/events?asset_id=a1", nil)
	rec := httptest.NewRecorder()
	h.Events(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Events         []models.MaintenanceEvent `json:"events"`
		Systems        []string                  `json:"systems"`
		LinkedRequests []string                  `json:"linked_requests"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Events, 2)
	// Hydraulics belongs to the filtered-out asset and must not appear
	assert.Equal(t, []string{"Brakes"}, resp.Systems)
	assert.Equal(t, []string{"req-7"}, resp.LinkedRequests)
}

func TestEvents_AvgClosureLatency(t *testing.T) {
	fast := "2025-06-10T10:00:00Z"
	slow := "2025-06-12T10:00:00Z"
	events := &fakeEventStore{events: []models.MaintenanceEvent{
		// Closed after 24h and 48h; the open request contributes nothing
		{Kind: models.KindRequest, AssetID: "a1", Timestamp: "2025-06-09T10:00:00Z", Request: &models.RequestDetail{Status: "Closed", System: "Brakes", ClosedAt: &fast}},
		{Kind: models.KindRequest, AssetID: "a1", Timestamp: "2025-06-10T10:00:00Z", Request: &models.RequestDetail{Status: "Closed", System: "Engine", ClosedAt: &slow}},
		{Kind: models.KindRequest, AssetID: "a1", Timestamp: "2025-06-11T10:00:00Z", Request: &models.RequestDetail{Status: "Open", System: "Brakes"}},
	}}
	h := newTestDashboard(&fakeAssetStore{}, &fakeRecordStore{}, events, &fakeUserStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	h.Events(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		AvgClosureHours float64 `json:"avg_closure_hours"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 36.0, resp.AvgClosureHours)
}

func TestCloseRequest(t *testing.T) {
	id := primitive.NewObjectID()
	events := &fakeEventStore{events: []models.MaintenanceEvent{
		{ID: id, Kind: models.KindRequest, AssetID: "a1", Timestamp: "2025-06-09T10:00:00Z", Request: &models.RequestDetail{Status: "Open", System: "Brakes"}},
	}}
	h := newTestDashboard(&fakeAssetStore{}, &fakeRecordStore{}, events, &fakeUserStore{})

	router := mux.NewRouter()
	router.HandleFunc("/api/events/{id}/close", h.CloseRequest)
	req := httptest.NewRequest(http.MethodPost, "/api/events/"+id.Hex()+"/close", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, events.events[0].Request.ClosedAt)
	assert.Equal(t, "Closed", events.events[0].Request.Status)
	// The handler stamps its own clock as the closure time
	assert.Equal(t, h.now().Format(time.RFC3339), *events.events[0].Request.ClosedAt)
	assert.False(t, events.events[0].IsOpenRequest())
}

func TestCloseRequest_NotFound(t *testing.T) {
	h := newTestDashboard(&fakeAssetStore{}, &fakeRecordStore{}, &fakeEventStore{}, &fakeUserStore{})

	router := mux.NewRouter()
	router.HandleFunc("/api/events/{id}/close", h.CloseRequest)
	req := httptest.NewRequest(http.MethodPost, "/api/events/"+primitive.NewObjectID().Hex()+"/close", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrends_ExcludesUnknownBucket(t *testing.T) {
	events := &fakeEventStore{events: []models.MaintenanceEvent{
		{Kind: models.KindLog, AssetID: "a1", Timestamp: "2025-06-11T09:00:00Z", Log: &models.LogDetail{}},
		{Kind: models.KindLog, AssetID: "a1", Timestamp: "garbage", Log: &models.LogDetail{}},
	}}
	h := newTestDashboard(&fakeAssetStore{}, &fakeRecordStore{}, events, &fakeUserStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/trends", nil)
	rec := httptest.NewRecorder()
	h.Trends(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var series []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	require.Len(t, series, 1)
	assert.Equal(t, "2025-06-09", series[0]["week"])
}
