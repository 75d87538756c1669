package classify

import (
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), 90, 255})
		}
	}
	return img
}

func TestHuggingFaceClassify(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Write([]byte(`[{"label":"pizza","score":0.8},{"label":"salad","score":0.1}]`))
	}))
	defer srv.Close()

	c := NewHuggingFace("nateraw/food", "secret-token", WithBaseURL(srv.URL))
	preds, err := c.Classify(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if len(preds) != 2 {
		t.Fatalf("Expected 2 predictions, got %d", len(preds))
	}
	if preds[0].Label != "pizza" || preds[0].Score != 0.8 {
		t.Errorf("Unexpected top prediction: %+v", preds[0])
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Expected bearer auth, got %q", gotAuth)
	}
	if gotPath != "/models/nateraw/food" {
		t.Errorf("Unexpected path: %s", gotPath)
	}
}

func TestHuggingFaceFallbackModel(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.Contains(r.URL.Path, "nateraw/food") {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"Model nateraw/food is currently loading"}`))
			return
		}
		w.Write([]byte(`[{"label":"plate","score":0.5}]`))
	}))
	defer srv.Close()

	c := NewHuggingFace("nateraw/food", "", WithBaseURL(srv.URL))
	preds, err := c.Classify(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Classify should recover via fallback model: %v", err)
	}
	if preds[0].Label != "plate" {
		t.Errorf("Expected fallback prediction, got %+v", preds[0])
	}
	if len(paths) != 2 || !strings.Contains(paths[1], FallbackModel) {
		t.Errorf("Expected second request to fallback model, got %v", paths)
	}
}

func TestHuggingFaceBothModelsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHuggingFace("", "", WithBaseURL(srv.URL))
	if _, err := c.Classify(context.Background(), testImage()); err == nil {
		t.Error("Expected hard error when both models fail")
	}
}

func TestHuggingFaceNonLoadErrorNoFallback(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewHuggingFace("", "bad-key", WithBaseURL(srv.URL))
	if _, err := c.Classify(context.Background(), testImage()); err == nil {
		t.Error("Expected error for auth failure")
	}
	if calls != 1 {
		t.Errorf("Auth failure must not trigger the fallback model, got %d calls", calls)
	}
}

func TestHuggingFaceTopKCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sb strings.Builder
		sb.WriteString("[")
		for i := 0; i < 15; i++ {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(`{"label":"food","score":0.5}`)
		}
		sb.WriteString("]")
		w.Write([]byte(sb.String()))
	}))
	defer srv.Close()

	c := NewHuggingFace("", "", WithBaseURL(srv.URL))
	preds, err := c.Classify(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(preds) != TopK {
		t.Errorf("Expected top-k cap of %d, got %d", TopK, len(preds))
	}
}

func TestParseRankedLabelsFenced(t *testing.T) {
	raw := "```json\n[{\"label\":\"rice\",\"score\":0.7},{\"label\":\"curry\",\"score\":0.2}]\n```"
	preds, err := parseRankedLabels(raw)
	if err != nil {
		t.Fatalf("parseRankedLabels failed: %v", err)
	}
	if preds[0].Label != "rice" {
		t.Errorf("Expected rice first, got %+v", preds[0])
	}
}

func TestParseRankedLabelsReordersDescending(t *testing.T) {
	preds, err := parseRankedLabels(`[{"label":"a","score":0.1},{"label":"b","score":0.9}]`)
	if err != nil {
		t.Fatalf("parseRankedLabels failed: %v", err)
	}
	if preds[0].Label != "b" {
		t.Errorf("Expected descending order, got %+v", preds)
	}
}

func TestParseRankedLabelsNoArray(t *testing.T) {
	if _, err := parseRankedLabels("I see a pizza in this image"); err == nil {
		t.Error("Expected error for prose response")
	}
}
