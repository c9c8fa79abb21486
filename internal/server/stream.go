package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"
)

// StreamInterval is the pause between MJPEG parts.
const StreamInterval = 66 * time.Millisecond

// StreamHandler serves the latest annotated preview frame as MJPEG.
type StreamHandler struct {
	snapshot func() ([]byte, bool)
	interval time.Duration
}

// NewStreamHandler creates a StreamHandler that polls snapshot for JPEG data.
func NewStreamHandler(snapshot func() ([]byte, bool)) *StreamHandler {
	return &StreamHandler{snapshot: snapshot, interval: StreamInterval}
}

// ServeHTTP streams MJPEG frames until the client goes away. A frame is only
// written when the snapshot changed since the previous part.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last []byte
	for {
		if data, ok := h.snapshot(); ok && !bytes.Equal(data, last) {
			if err := writePart(w, data); err != nil {
				return
			}
			last = data
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\r\n")
	return err
}
