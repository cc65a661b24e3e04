package safety

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func classifierServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		var req map[string]string
		if err := json.Unmarshal(payload, &req); err != nil {
			t.Errorf("invalid request payload: %v", err)
		}
		if req["inputs"] == "" {
			t.Error("request missing inputs field")
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestFlagged(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		threshold   float64
		wantFlagged bool
	}{
		{
			name:        "clean text",
			body:        `[[{"label":"clean","score":0.97},{"label":"욕설","score":0.02}]]`,
			threshold:   0.5,
			wantFlagged: false,
		},
		{
			name:        "profanity above threshold",
			body:        `[[{"label":"욕설","score":0.91},{"label":"clean","score":0.05}]]`,
			threshold:   0.5,
			wantFlagged: true,
		},
		{
			name:        "offense below threshold passes",
			body:        `[[{"label":"욕설","score":0.31},{"label":"clean","score":0.62}]]`,
			threshold:   0.5,
			wantFlagged: false,
		},
		{
			name:        "high clean score never flags",
			body:        `[[{"label":"clean","score":0.99}]]`,
			threshold:   0.5,
			wantFlagged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := classifierServer(t, http.StatusOK, tt.body)
			defer srv.Close()

			c := NewHuggingFaceClassifier("", srv.URL, "smilegate-ai/kor_unsmile", tt.threshold)
			flagged, err := c.Flagged(context.Background(), "테스트 문장")
			if err != nil {
				t.Fatalf("Flagged returned error: %v", err)
			}
			if flagged != tt.wantFlagged {
				t.Errorf("flagged = %v, want %v", flagged, tt.wantFlagged)
			}
		})
	}
}

func TestFlaggedErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"model loading"}`},
		{name: "malformed body", status: http.StatusOK, body: `not json`},
		{name: "empty scores", status: http.StatusOK, body: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := classifierServer(t, tt.status, tt.body)
			defer srv.Close()

			c := NewHuggingFaceClassifier("", srv.URL, "smilegate-ai/kor_unsmile", 0.5)
			if _, err := c.Flagged(context.Background(), "테스트 문장"); err == nil {
				t.Error("Flagged returned nil error, want failure")
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	c := NewHuggingFaceClassifier("key", "", "", 0)
	if c.baseURL != "https://api-inference.huggingface.co" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.model != "smilegate-ai/kor_unsmile" {
		t.Errorf("model = %q", c.model)
	}
	if c.threshold != 0.5 {
		t.Errorf("threshold = %v", c.threshold)
	}
}
