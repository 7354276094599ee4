package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/citycommute/backend/internal/domain"
	"github.com/citycommute/backend/internal/provider/kakao"
	"github.com/citycommute/backend/internal/provider/odsay"
	"github.com/citycommute/backend/internal/repository/postgres"
	"github.com/citycommute/backend/internal/service"
)

// newTestApp wires the full stack in offline mode: mock repository, keyless
// providers, no publisher.
func newTestApp(t *testing.T) (*fiber.App, *postgres.MockRepository, *service.PlannerService) {
	t.Helper()
	nop := zerolog.Nop()
	repo := postgres.NewMockRepository()
	crowd := service.NewCrowdService(repo, nop, nil)
	segments := service.NewSegmentService(crowd, nop)
	planner := service.NewPlannerService(
		odsay.NewClient("", nop),
		kakao.NewClient("", nop),
		segments, repo, repo, nil, nop, nil,
	)
	learner := service.NewLearnerService(repo, 0.5, nop, nil)

	app := fiber.New()
	SetupRoutes(app, NewHandler(planner, learner, repo))
	return app, repo, planner
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	fields := map[string]json.RawMessage{}
	json.Unmarshal(raw, &fields)
	return resp.StatusCode, fields
}

func TestHealthCheck(t *testing.T) {
	app, _, _ := newTestApp(t)
	code, fields := doJSON(t, app, "GET", "/health", nil)
	if code != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	var status, storage string
	json.Unmarshal(fields["status"], &status)
	json.Unmarshal(fields["storage"], &storage)
	if status != "ok" || storage != "ok" {
		t.Fatalf("health = %s/%s, want ok/ok", status, storage)
	}
}

func TestPlanRoute(t *testing.T) {
	app, _, _ := newTestApp(t)
	code, fields := doJSON(t, app, "POST", "/api/v1/routes/plan", PlanRequest{
		Origin: "37.5665,126.9780",
		Dest:   "37.4979,127.0276",
	})
	if code != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	var data domain.PlanData
	if err := json.Unmarshal(fields["data"], &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Candidates != 2 {
		t.Fatalf("candidates = %d, want the 2 offline itineraries", data.Candidates)
	}
	if data.Fallback || data.Index < 1 || data.Index > 2 {
		t.Fatalf("index/fallback = %d/%v", data.Index, data.Fallback)
	}
	if len(data.Segments) == 0 || data.TotalMin <= 0 {
		t.Fatalf("plan data = %+v", data)
	}
}

func TestPlanRouteValidation(t *testing.T) {
	app, _, _ := newTestApp(t)
	if code, _ := doJSON(t, app, "POST", "/api/v1/routes/plan", PlanRequest{Dest: "37.5,127.0"}); code != fiber.StatusBadRequest {
		t.Errorf("missing origin: status = %d, want 400", code)
	}
	if code, _ := doJSON(t, app, "POST", "/api/v1/routes/plan", PlanRequest{Origin: "37.5,127.0"}); code != fiber.StatusBadRequest {
		t.Errorf("missing dest: status = %d, want 400", code)
	}
}

func TestPlanRouteUnresolvablePlace(t *testing.T) {
	// No geocoding key configured, so a place name cannot resolve.
	app, _, _ := newTestApp(t)
	code, _ := doJSON(t, app, "POST", "/api/v1/routes/plan", PlanRequest{
		Origin: "Seoul City Hall",
		Dest:   "37.4979,127.0276",
	})
	if code != fiber.StatusBadGateway {
		t.Fatalf("status = %d, want 502", code)
	}
}

func TestFeedbackLearnsAndRecordsTrip(t *testing.T) {
	app, repo, planner := newTestApp(t)
	code, fields := doJSON(t, app, "POST", "/api/v1/routes/feedback", FeedbackRequest{
		Origin: "37.5665,126.9780",
		Dest:   "37.4979,127.0276",
		Segments: []domain.Segment{
			{Mode: domain.ModeSubway, DurationMin: 18, Crowd: 3},
			{Mode: domain.ModeWalk, DurationMin: 5, Crowd: 1},
		},
	})
	if code != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}

	var prefs domain.Preferences
	if err := json.Unmarshal(fields["preferences"], &prefs); err != nil {
		t.Fatalf("decode preferences: %v", err)
	}
	if prefs.Runs != 1 {
		t.Fatalf("runs = %d, want 1", prefs.Runs)
	}
	if prefs.ModeBias[domain.ModeSubway] != 0.5 || prefs.ModeBias[domain.ModeBus] != -0.25 {
		t.Fatalf("biases = %v", prefs.ModeBias)
	}

	planner.WaitBackground()
	trips := repo.Trips()
	if len(trips) != 1 || trips[0].TotalMin != 23 {
		t.Fatalf("trips = %+v, want one 23-minute trip", trips)
	}
}

func TestFeedbackRequiresSegments(t *testing.T) {
	app, _, _ := newTestApp(t)
	code, _ := doJSON(t, app, "POST", "/api/v1/routes/feedback", FeedbackRequest{Origin: "A", Dest: "B"})
	if code != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, fields := doJSON(t, app, "GET", "/api/v1/preferences", nil)
	if code != fiber.StatusOK {
		t.Fatalf("GET status = %d, want 200", code)
	}
	var prefs domain.Preferences
	if err := json.Unmarshal(fields["data"], &prefs); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if prefs.CrowdWeight != 2.0 || prefs.MaxCrowd != 4 {
		t.Fatalf("initial preferences = %+v, want defaults", prefs)
	}

	update := domain.DefaultPreferences()
	update.CrowdWeight = 4
	update.MaxCrowd = 2
	if code, _ = doJSON(t, app, "PUT", "/api/v1/preferences", update); code != fiber.StatusOK {
		t.Fatalf("PUT status = %d, want 200", code)
	}

	_, fields = doJSON(t, app, "GET", "/api/v1/preferences", nil)
	if err := json.Unmarshal(fields["data"], &prefs); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if prefs.CrowdWeight != 4 || prefs.MaxCrowd != 2 {
		t.Fatalf("updated preferences = %+v", prefs)
	}
}

func TestUpdatePreferencesValidation(t *testing.T) {
	app, _, _ := newTestApp(t)

	bad := domain.DefaultPreferences()
	bad.MaxCrowd = 9
	if code, _ := doJSON(t, app, "PUT", "/api/v1/preferences", bad); code != fiber.StatusBadRequest {
		t.Errorf("max_crowd 9: status = %d, want 400", code)
	}

	bad = domain.DefaultPreferences()
	bad.CrowdWeight = -1
	if code, _ := doJSON(t, app, "PUT", "/api/v1/preferences", bad); code != fiber.StatusBadRequest {
		t.Errorf("negative crowd_weight: status = %d, want 400", code)
	}
}
