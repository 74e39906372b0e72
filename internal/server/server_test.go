package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func serve(s http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	tests := []struct {
		name        string
		withApp     bool
		wantSession bool
	}{
		{"without app", false, false},
		{"with app", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{}
			if tt.withApp {
				cfg.App, _ = newTestApp(t, false)
			}
			s := New(cfg)
			defer s.Close()

			rec := serve(s, http.MethodGet, "/api/health")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}

			var body map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["status"] != "ok" {
				t.Errorf("status field = %v", body["status"])
			}
			if _, ok := body["uptime"]; !ok {
				t.Error("missing uptime")
			}
			if session, ok := body["session"]; ok != tt.wantSession {
				t.Errorf("session field = %v, present = %v", session, ok)
			}
		})
	}
}

func TestServer_HealthRejectsOtherMethods(t *testing.T) {
	s := New(Config{})

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		if rec := serve(s, method, "/api/health"); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s status = %d, want 405", method, rec.Code)
		}
	}
}

func TestServer_APIRoutesNeedApp(t *testing.T) {
	s := New(Config{})

	for _, path := range []string{"/api/recognition", "/api/stream", "/api/ws", "/api/nonexistent"} {
		if rec := serve(s, http.MethodGet, path); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	index := "<html><body>Signova</body></html>"
	script := "console.log('signova')"
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(index), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	a, _ := newTestApp(t, false)
	s := New(Config{StaticDir: dir, App: a})
	defer s.Close()

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/", http.StatusOK, index},
		{"/app.js", http.StatusOK, script},
		{"/missing.html", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		rec := serve(s, http.MethodGet, tt.path)
		if rec.Code != tt.wantCode {
			t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.wantCode)
		}
		if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
			t.Errorf("GET %s body = %q", tt.path, rec.Body.String())
		}
	}

	if rec := serve(s, http.MethodGet, "/api/language"); rec.Code != http.StatusOK {
		t.Errorf("API should still be routed next to static files, got %d", rec.Code)
	}
}

func TestServer_NoStaticDir(t *testing.T) {
	s := New(Config{})
	if rec := serve(s, http.MethodGet, "/"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServer_CloseIsIdempotent(t *testing.T) {
	a, _ := newTestApp(t, false)
	s := New(Config{App: a})
	s.Close()
	s.Close()
}
