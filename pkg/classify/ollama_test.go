package classify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOllamaClassifyTimesOutWithoutDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Hang until the client gives up.
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, err := NewOllama(srv.URL, "llava")
	if err != nil {
		t.Fatalf("NewOllama failed: %v", err)
	}
	c.timeout = 50 * time.Millisecond

	start := time.Now()
	_, err = c.Classify(context.Background(), testImage())
	if err == nil {
		t.Fatal("Expected timeout error from hung server")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("Classify did not honor the default timeout, took %s", elapsed)
	}
}

func TestOllamaClassifyKeepsCallerDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, err := NewOllama(srv.URL, "llava")
	if err != nil {
		t.Fatalf("NewOllama failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := c.Classify(ctx, testImage()); err == nil {
		t.Fatal("Expected error when the caller's deadline expires")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("Caller deadline not honored, took %s", elapsed)
	}
}
