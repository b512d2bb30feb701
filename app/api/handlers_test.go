package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ratewatch/rate-watch/app/database"
	"github.com/ratewatch/rate-watch/app/rates"
)

type stubConfigRepo struct {
	added []database.CurrentConfig
}

func (r *stubConfigRepo) Add(config database.CurrentConfig) (*database.CurrentConfig, error) {
	config.ID = int64(len(r.added) + 1)
	config.CreatedAt = time.Now().UTC()
	r.added = append(r.added, config)
	return &config, nil
}

func (r *stubConfigRepo) GetAll() ([]database.CurrentConfig, error) { return r.added, nil }

func (r *stubConfigRepo) FindCurrent(utilityType string) (*database.CurrentConfig, error) {
	for i := len(r.added) - 1; i >= 0; i-- {
		if r.added[i].Type == utilityType {
			return &r.added[i], nil
		}
	}
	return nil, nil
}

func (r *stubConfigRepo) Remove(id int64) error { return nil }

func newConfigTestServer(t *testing.T) (*stubConfigRepo, http.Handler) {
	t.Helper()
	repo := &stubConfigRepo{}
	handler := NewHandler(nil, repo, rates.NewSourceCache(t.TempDir(), 0), nil)
	return repo, NewServer(handler, "")
}

func TestCreateConfig_WithValidUntil(t *testing.T) {
	repo, server := newConfigTestServer(t)

	body := `{"name":"Incumbent","type":"gas","rate":0.11,"valid_until":"2027-01-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPut, "/configs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if len(repo.added) != 1 {
		t.Fatalf("Expected 1 stored config, got %d", len(repo.added))
	}

	stored := repo.added[0]
	if stored.ValidUntil == nil {
		t.Fatal("valid_until was not persisted")
	}
	want := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	if !stored.ValidUntil.Equal(want) {
		t.Errorf("valid_until = %v, want %v", stored.ValidUntil, want)
	}
	if !strings.Contains(w.Body.String(), "2027-01-01") {
		t.Errorf("response should echo valid_until, got %s", w.Body.String())
	}
}

func TestCreateConfig_ValidUntilOptional(t *testing.T) {
	repo, server := newConfigTestServer(t)

	body := `{"name":"Incumbent","type":"electric","rate":0.12}`
	req := httptest.NewRequest(http.MethodPut, "/configs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if repo.added[0].ValidUntil != nil {
		t.Errorf("valid_until should stay nil when omitted, got %v", repo.added[0].ValidUntil)
	}
}

func TestCreateConfig_RejectsInvalidType(t *testing.T) {
	_, server := newConfigTestServer(t)

	body := `{"name":"Incumbent","type":"water","rate":0.11}`
	req := httptest.NewRequest(http.MethodPut, "/configs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
