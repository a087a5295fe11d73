package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkondo/nexttrack/internal/model"
)

func newTestRouter(svc OpportunityServiceInterface, resetter DemoResetter) http.Handler {
	return NewRouter(&RouterDeps{
		CORSAllowedOrigin:  "http://localhost:3000",
		OpportunityService: svc,
		HealthChecker:      &mockHealthChecker{},
		DemoResetter:       resetter,
	})
}

func TestRouter_DueRequiresTenantHeader(t *testing.T) {
	svc := &mockOpportunityService{}
	router := newTestRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/opportunities/due", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if svc.listDueCalls != 0 {
		t.Error("service must not be reached without a tenant header")
	}
	body := parseAPIErrorResponse(t, w)
	if body["code"] != model.ErrCodeMissingTenant {
		t.Errorf("code = %q", body["code"])
	}
}

func TestRouter_MalformedTenantHeaderRejected(t *testing.T) {
	svc := &mockOpportunityService{}
	router := newTestRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/opportunities/due", nil)
	req.Header.Set("X-Tenant-ID", "not-a-uuid")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	body := parseAPIErrorResponse(t, w)
	if body["code"] != model.ErrCodeInvalidTenantFormat {
		t.Errorf("code = %q", body["code"])
	}
}

func TestRouter_DueWithTenantHeaderReachesService(t *testing.T) {
	svc := &mockOpportunityService{}
	router := newTestRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/opportunities/due", nil)
	req.Header.Set("X-Tenant-ID", testTenantID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	if svc.listDueCalls != 1 {
		t.Errorf("listDueCalls = %d, want 1", svc.listDueCalls)
	}
}

func TestRouter_HealthSkipsTenantChain(t *testing.T) {
	router := newTestRouter(&mockOpportunityService{}, nil)

	for _, path := range []string{"/", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("GET %s without tenant header: status = %d, want 200", path, w.Code)
		}
	}
}

func TestRouter_DemoResetDisabledByDefault(t *testing.T) {
	router := newTestRouter(&mockOpportunityService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/demo/reset", nil)
	req.Header.Set("X-Tenant-ID", testTenantID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when demo mode is off", w.Code)
	}
}

func TestRouter_DemoResetEnabled(t *testing.T) {
	resetter := &mockDemoResetter{}
	router := newTestRouter(&mockOpportunityService{}, resetter)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/demo/reset", nil)
	req.Header.Set("X-Tenant-ID", testTenantID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	if resetter.calls != 1 {
		t.Errorf("resetter calls = %d, want 1", resetter.calls)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(&mockOpportunityService{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/opportunities/due", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
