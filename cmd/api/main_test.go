package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/plantguardian/plantguard-backend/internal/services"
)

// setupTestRouter points the service wiring at the given upstream base URL
// and returns a router ready to serve in-memory requests.
func setupTestRouter(t *testing.T, upstream string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger = log.New(io.Discard, "", 0)
	plantAPIService = services.NewPlantAPIService(upstream)
	analysisService = services.NewAnalysisService(plantAPIService, services.NewNoopStore(), logger)

	return setupRouter()
}

// deadUpstream returns a base URL that refuses connections immediately.
func deadUpstream(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	return server.URL
}

func performRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON body, got error %v: %s", err, w.Body.String())
	}
	return body
}

func TestRootEndpoint(t *testing.T) {
	r := setupTestRouter(t, deadUpstream(t))

	w := performRequest(r, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body["status"])
	}
	if body["service"] != "Plant AI Guardian Backend" {
		t.Errorf("Expected service name, got %v", body["service"])
	}
}

func TestAnalyzeEndpoint_FallbackBundle(t *testing.T) {
	r := setupTestRouter(t, deadUpstream(t))

	w := performRequest(r, http.MethodPost, "/api/analyze", `{"image": "ZmFrZQ=="}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 despite dead upstream, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)

	result, ok := body["result"].(map[string]any)
	if !ok {
		t.Fatalf("Expected result object, got %v", body["result"])
	}
	if result["disease"] != "Leaf Blight" {
		t.Errorf("Expected fallback disease Leaf Blight, got %v", result["disease"])
	}
	if result["severity"] != "high" {
		t.Errorf("Expected severity high, got %v", result["severity"])
	}
	if result["organ"] != "leaf" {
		t.Errorf("Expected organ leaf, got %v", result["organ"])
	}

	products, ok := body["products"].([]any)
	if !ok || len(products) != 2 {
		t.Fatalf("Expected 2 fallback products, got %v", body["products"])
	}
	first, _ := products[0].(map[string]any)
	second, _ := products[1].(map[string]any)
	if first["name"] != "Bio Neem Oil" || second["name"] != "Copper Fungicide" {
		t.Errorf("Unexpected fallback product names: %v, %v", first["name"], second["name"])
	}

	sources, ok := body["sources"].(map[string]any)
	if !ok {
		t.Fatalf("Expected sources object, got %v", body["sources"])
	}
	for _, section := range []string{"prediction", "treatments", "products", "tutorials"} {
		if sources[section] != "fallback" {
			t.Errorf("Expected %s source fallback, got %v", section, sources[section])
		}
	}
}

func TestPredictEndpoint_Sources(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"disease": "Rust", "confidence": 0.63}`))
	}))
	defer upstream.Close()

	r := setupTestRouter(t, upstream.URL)
	w := performRequest(r, http.MethodPost, "/api/predict", `{"image": "ZmFrZQ=="}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-Data-Source"); got != "live" {
		t.Errorf("Expected X-Data-Source live, got %q", got)
	}
	body := decodeBody(t, w)
	if body["disease"] != "Rust" || body["severity"] != "medium" {
		t.Errorf("Unexpected prediction: %v", body)
	}

	r = setupTestRouter(t, deadUpstream(t))
	w = performRequest(r, http.MethodPost, "/api/predict", `{"image": "ZmFrZQ=="}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-Data-Source"); got != "fallback" {
		t.Errorf("Expected X-Data-Source fallback, got %q", got)
	}
}

func TestPredictEndpoint_MissingImage(t *testing.T) {
	r := setupTestRouter(t, deadUpstream(t))

	for _, payload := range []string{`{}`, `{"image": ""}`, `not json`} {
		w := performRequest(r, http.MethodPost, "/api/predict", payload)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %q, got %d", payload, w.Code)
			continue
		}
		body := decodeBody(t, w)
		if body["type"] != "VALIDATION_ERROR" {
			t.Errorf("Expected VALIDATION_ERROR for %q, got %v", payload, body["type"])
		}
	}
}

func TestContentEndpoints_RequireDisease(t *testing.T) {
	r := setupTestRouter(t, deadUpstream(t))

	for _, path := range []string{"/api/treatments", "/api/products", "/api/tutorials"} {
		w := performRequest(r, http.MethodGet, path, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %s without disease, got %d", path, w.Code)
		}

		w = performRequest(r, http.MethodGet, path+"?disease=Rust", "")
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200 for %s, got %d", path, w.Code)
			continue
		}
		if got := w.Header().Get("X-Data-Source"); got != "fallback" {
			t.Errorf("Expected X-Data-Source fallback for %s, got %q", path, got)
		}

		var items []any
		if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
			t.Errorf("Expected JSON array from %s, got %v", path, err)
			continue
		}
		if len(items) == 0 {
			t.Errorf("Expected fallback content from %s, got empty array", path)
		}
	}
}

func TestTreatmentsEndpoint_Live(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"symptoms": "rings on leaves", "organic": "prune affected stems"}]`))
	}))
	defer upstream.Close()

	r := setupTestRouter(t, upstream.URL)
	w := performRequest(r, http.MethodGet, "/api/treatments?disease=Target+Spot", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-Data-Source"); got != "live" {
		t.Errorf("Expected X-Data-Source live, got %q", got)
	}

	var items []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("Expected JSON array, got %v", err)
	}
	if len(items) != 1 || items[0]["symptoms"] != "rings on leaves" {
		t.Errorf("Unexpected treatments: %v", items)
	}
}

func TestRecentEndpoint(t *testing.T) {
	r := setupTestRouter(t, deadUpstream(t))

	w := performRequest(r, http.MethodGet, "/api/recent", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var items []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("Expected JSON array, got %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("Expected 4 sample analyses, got %d", len(items))
	}
	if items[0]["disease"] != "Leaf Blight" || items[0]["severity"] != "high" {
		t.Errorf("Unexpected first sample: %v", items[0])
	}

	w = performRequest(r, http.MethodGet, "/api/recent?limit=notanumber", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for non-integer limit, got %d", w.Code)
	}
}

func TestTestEndpoint(t *testing.T) {
	t.Setenv("DATABASE_URL", "mongodb://localhost:27017")
	t.Setenv("DATABASE_NAME", "")

	r := setupTestRouter(t, deadUpstream(t))
	w := performRequest(r, http.MethodGet, "/test", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["backend"] != "✅ Running" {
		t.Errorf("Unexpected backend status: %v", body["backend"])
	}
	if body["database"] != "⚠️  Available but not initialized" {
		t.Errorf("Unexpected database status: %v", body["database"])
	}
	if body["database_url"] != "✅ Set" {
		t.Errorf("Unexpected database_url flag: %v", body["database_url"])
	}
	if body["database_name"] != "❌ Not Set" {
		t.Errorf("Unexpected database_name flag: %v", body["database_name"])
	}
	if body["connection_status"] != "Not Connected" {
		t.Errorf("Unexpected connection status: %v", body["connection_status"])
	}
	if _, ok := body["collections"].([]any); !ok {
		t.Errorf("Expected collections array, got %v", body["collections"])
	}
}

func TestCORSHeaders(t *testing.T) {
	r := setupTestRouter(t, deadUpstream(t))

	w := performRequest(r, http.MethodOptions, "/api/predict", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard origin, got %q", got)
	}

	w = performRequest(r, http.MethodGet, "/", "")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard origin on normal responses, got %q", got)
	}
}

func TestHandleError_UnknownError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	handleError(c, io.ErrUnexpectedEOF)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "INTERNAL_ERROR") {
		t.Errorf("Expected INTERNAL_ERROR in body, got %s", w.Body.String())
	}
}
