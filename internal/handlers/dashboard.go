package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/scoring"
)

// DashboardHandler serves the PM board, scoreboards, trend series and asset
// health summaries. Every request fetches a fresh snapshot and recomputes
// from scratch; nothing derived is cached or written back.
type DashboardHandler struct {
	assets  db.AssetCollection
	records db.ServiceRecordCollection
	events  db.EventCollection
	users   db.UserCollection
	policy  scoring.Policy

	// now is swappable for tests
	now func() time.Time
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(assets db.AssetCollection, records db.ServiceRecordCollection, events db.EventCollection, users db.UserCollection) *DashboardHandler {
	return &DashboardHandler{
		assets:  assets,
		records: records,
		events:  events,
		users:   users,
		policy:  scoring.DefaultPolicy(),
		now:     time.Now,
	}
}

// PMBoard returns the combined due/overdue board for the whole fleet.
func (h *DashboardHandler) PMBoard(w http.ResponseWriter, r *http.Request) {
	assets, err := h.loadAssets(r.Context(), bson.M{})
	if err != nil {
		http.Error(w, "Failed to load assets", http.StatusInternalServerError)
		return
	}
	records, err := h.loadServiceRecords(r.Context(), bson.M{})
	if err != nil {
		http.Error(w, "Failed to load service records", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, h.policy.BuildPMBoard(assets, records))
}

// Scoreboard returns the per-actor leaderboard for the requested class and
// period. Query parameters: class (teammate|mechanic), period.
func (h *DashboardHandler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	class := scoring.ActorClass(r.URL.Query().Get("class"))
	if class == "" {
		class = scoring.ClassMechanic
	}
	if class != scoring.ClassTeammate && class != scoring.ClassMechanic {
		http.Error(w, "Invalid actor class", http.StatusBadRequest)
		return
	}
	period := scoring.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = scoring.PeriodMonthly
	}
	if !scoring.IsValidPeriod(period) {
		http.Error(w, "Invalid period", http.StatusBadRequest)
		return
	}

	events, err := h.loadEvents(r.Context(), bson.M{})
	if err != nil {
		http.Error(w, "Failed to load events", http.StatusInternalServerError)
		return
	}

	filtered := scoring.FilterEvents(events, scoring.EventFilter{Period: period, Ref: h.now()})
	names, err := h.loadDisplayNames(r.Context())
	if err != nil {
		http.Error(w, "Failed to load users", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, scoring.ScoreActors(filtered.Events, class, names))
}

// AssetHealth returns the composite health summary for one asset.
func (h *DashboardHandler) AssetHealth(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	asset, err := h.assets.FindAssetByID(r.Context(), id)
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Asset not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load asset", http.StatusInternalServerError)
		return
	}

	records, err := h.loadServiceRecords(r.Context(), bson.M{"asset_id": id})
	if err != nil {
		http.Error(w, "Failed to load service records", http.StatusInternalServerError)
		return
	}
	events, err := h.loadEvents(r.Context(), bson.M{"asset_id": id})
	if err != nil {
		http.Error(w, "Failed to load events", http.StatusInternalServerError)
		return
	}

	summary := h.policy.ComposeHealth(*asset, records, events, h.now().Year())
	writeJSON(w, http.StatusOK, summary)
}

// Events returns the filtered event list plus the distinct filter keys the
// dashboard uses for its dropdowns. Query parameters: asset_id, actor_id,
// period.
func (h *DashboardHandler) Events(w http.ResponseWriter, r *http.Request) {
	filter := scoring.EventFilter{
		AssetID: r.URL.Query().Get("asset_id"),
		ActorID: r.URL.Query().Get("actor_id"),
	}
	if p := r.URL.Query().Get("period"); p != "" {
		period := scoring.Period(p)
		if !scoring.IsValidPeriod(period) {
			http.Error(w, "Invalid period", http.StatusBadRequest)
			return
		}
		filter.Period = period
		filter.Ref = h.now()
	}

	events, err := h.loadEvents(r.Context(), bson.M{})
	if err != nil {
		http.Error(w, "Failed to load events", http.StatusInternalServerError)
		return
	}

	res := scoring.FilterEvents(events, filter)
	resp := map[string]interface{}{
		"events":          res.Events,
		"systems":         res.Systems,
		"linked_requests": res.LinkedRequests,
	}
	if mean, ok := scoring.MeanClosureLatency(res.Events); ok {
		resp["avg_closure_hours"] = mean.Hours()
	}
	writeJSON(w, http.StatusOK, resp)
}

// CloseRequest transitions an open maintenance request to Closed, stamping
// the closure time the latency metric reads back.
func (h *DashboardHandler) CloseRequest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := h.events.CloseRequest(r.Context(), id, h.now().Format(time.RFC3339))
	switch err {
	case nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "Closed"})
	case db.ErrNotFound:
		http.Error(w, "Request not found", http.StatusNotFound)
	default:
		// Write errors surface to the caller; nothing is retried
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

// Trends returns Monday-keyed weekly event counts for trend charts. Events
// with unparsable timestamps are dropped, never charted as an Unknown bucket.
func (h *DashboardHandler) Trends(w http.ResponseWriter, r *http.Request) {
	filter := scoring.EventFilter{AssetID: r.URL.Query().Get("asset_id")}

	events, err := h.loadEvents(r.Context(), bson.M{})
	if err != nil {
		http.Error(w, "Failed to load events", http.StatusInternalServerError)
		return
	}

	res := scoring.FilterEvents(events, filter)
	keys, counts := scoring.WeeklySeries(res.Events)

	series := make([]map[string]interface{}, 0, len(keys))
	for _, k := range keys {
		series = append(series, map[string]interface{}{"week": k, "count": counts[k]})
	}
	writeJSON(w, http.StatusOK, series)
}

func (h *DashboardHandler) loadAssets(ctx context.Context, filter bson.M) ([]models.Asset, error) {
	cursor, err := h.assets.FindAssets(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var assets []models.Asset
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func (h *DashboardHandler) loadServiceRecords(ctx context.Context, filter bson.M) ([]models.ServiceRecord, error) {
	cursor, err := h.records.FindServiceRecords(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var records []models.ServiceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (h *DashboardHandler) loadEvents(ctx context.Context, filter bson.M) ([]models.MaintenanceEvent, error) {
	cursor, err := h.events.FindEvents(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var events []models.MaintenanceEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (h *DashboardHandler) loadDisplayNames(ctx context.Context) (map[string]string, error) {
	cursor, err := h.users.FindUsers(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for i := range users {
		names[users[i].ID.Hex()] = users[i].DisplayName()
	}
	return names, nil
}
