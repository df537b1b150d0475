package preview

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"artforge/pkg/generate"
)

func fixtureBuildDir(t *testing.T) string {
	t.Helper()
	buildDir := t.TempDir()
	for _, sub := range []string{"images", "json"} {
		if err := os.MkdirAll(filepath.Join(buildDir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(buildDir, "images", "0.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(buildDir, "json", "0.json"), []byte(`{"edition":0}`), 0o644); err != nil {
		t.Fatal(err)
	}
	err := generate.WriteManifest(buildDir, generate.Manifest{
		RunID:     "test-run",
		Amount:    1,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return buildDir
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := NewServer(fixtureBuildDir(t), log.New(io.Discard))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestIndex(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["run_id"] != "test-run" {
		t.Errorf("run_id = %v", body["run_id"])
	}
	if body["amount"] != float64(1) {
		t.Errorf("amount = %v", body["amount"])
	}
}

func TestServeArtifacts(t *testing.T) {
	ts := testServer(t)

	for _, path := range []string{"/images/0.png", "/json/0.json"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestMissingArtifact(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/images/99.png")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestNoManifest(t *testing.T) {
	s := NewServer(t.TempDir(), log.New(io.Discard))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
