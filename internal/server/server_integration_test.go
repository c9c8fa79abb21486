package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/volume"
)

func TestAPI_VolumeWorkflow(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	det := detector.NewMockDetector()
	det.SetHands([]detector.HandFrame{detector.PinchLandmarksWithDistance(105)})

	sink := volume.NewMemorySink(0, 100)
	a, err := app.New(app.Config{
		Store:    st,
		Camera:   capture.NewMockCamera(nil, false),
		Detector: det,
		Sink:     sink,
		Journal:  true,
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}

	ts := httptest.NewServer(New(Config{Store: st, App: a}))
	defer ts.Close()
	client := ts.Client()

	// 1. Process one pinch frame.
	if _, err := a.ProcessFrame(context.Background(), nil); err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}

	// 2. The journal shows the dispatch.
	resp, err := client.Get(ts.URL + "/api/events")
	if err != nil {
		t.Fatalf("GET /api/events error = %v", err)
	}
	var list eventsBody
	json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()

	if list.Total != 1 {
		t.Fatalf("expected 1 event, got %d", list.Total)
	}
	if list.Events[0].Code != "11000" || list.Events[0].Percent != 50 {
		t.Errorf("unexpected event %+v", list.Events[0])
	}

	// 3. Status reports the reading.
	resp, err = client.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status error = %v", err)
	}
	var status app.Status
	json.NewDecoder(resp.Body).Decode(&status)
	resp.Body.Close()

	if status.Reading == nil || status.Reading.Percent != 50 {
		t.Errorf("unexpected reading %+v", status.Reading)
	}
	if status.Frames != 1 {
		t.Errorf("expected 1 frame, got %d", status.Frames)
	}

	// 4. Disable processing.
	resp, err = client.Post(ts.URL+"/api/status", "application/json", bytes.NewBufferString(`{"enabled":false}`))
	if err != nil {
		t.Fatalf("POST /api/status error = %v", err)
	}
	resp.Body.Close()
	if a.IsEnabled() {
		t.Error("expected app to be disabled")
	}

	// 5. Clear the journal.
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/events", nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE /api/events error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	n, _ := st.Events().Count()
	if n != 0 {
		t.Errorf("expected empty journal, got %d", n)
	}
}
