package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kartoza/heart-risk/internal/classifier"
	"github.com/kartoza/heart-risk/internal/config"
)

const patientJSON = `{"age":63,"sex":1,"cp":3,"trestbps":145,"chol":233,"fbs":1,"restecg":0,` +
	`"thalach":150,"exang":0,"oldpeak":2.3,"slope":0,"ca":0,"thal":1}`

func writeModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	model := `{"kind": "logistic_regression", "intercept": -1.5,
		"coefficients": [0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0]}`
	if err := os.WriteFile(path, []byte(model), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewLoadsModel(t *testing.T) {
	cfg := config.Default()
	cfg.ModelPath = writeModel(t)

	srv, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/predict", "application/json", strings.NewReader(patientJSON))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["prediction"] != float64(1) || body["result"] != "Heart Disease Detected" {
		t.Errorf("Unexpected response %v", body)
	}
}

func TestNewFailsWithoutModel(t *testing.T) {
	cfg := config.Default()
	cfg.ModelPath = filepath.Join(t.TempDir(), "missing.json")

	if srv, err := New(cfg, nil); err == nil || srv != nil {
		t.Error("Expected startup failure for a missing model")
	}
}

func TestNewWithClassifierRejectsNil(t *testing.T) {
	if _, err := NewWithClassifier(config.Default(), nil, nil); err == nil {
		t.Error("Expected error for nil classifier")
	}
}

func TestCachedServer(t *testing.T) {
	cfg := config.Default()
	cfg.CacheSize = 16

	srv, err := NewWithClassifier(cfg, nil, classifier.Constant(0))
	if err != nil {
		t.Fatalf("NewWithClassifier failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/predict", strings.NewReader(patientJSON))
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
	}
}

func TestStopBeforeStart(t *testing.T) {
	srv, err := NewWithClassifier(config.Default(), nil, classifier.Constant(0))
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if err := srv.Start(); !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("Expected ErrServerClosed after Stop, got %v", err)
	}
}

func TestStopWhileStarting(t *testing.T) {
	cfg := config.Default()
	cfg.Port = 0
	srv, err := NewWithClassifier(cfg, nil, classifier.Constant(0))
	if err != nil {
		t.Fatal(err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	if err := srv.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Expected ErrServerClosed, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestBundledModelLoads(t *testing.T) {
	cfg := config.Default()
	cfg.ModelPath = filepath.Join("..", "..", cfg.ModelPath)

	srv, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("Bundled %s does not load: %v", cfg.ModelPath, err)
	}

	req := httptest.NewRequest("POST", "/predict", strings.NewReader(patientJSON))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}
