package tips

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/menta2k/food-analyzer/pkg/types"
)

type stubProvider struct {
	tips []string
	err  error
}

func (s *stubProvider) Name() string { return "stub" }
func (s *stubProvider) Generate(context.Context, Request) ([]string, error) {
	return s.tips, s.err
}

func sampleRequest() Request {
	return Request{
		Foods: []string{"burger", "french fries"},
		Totals: types.MealTotals{
			Calories: 905, ProteinG: 35, CarbsG: 89, FatG: 44,
			FiberG: 7, SatFatG: 13, AddedSugarG: 5,
		},
		HealthScore: 55,
	}
}

func TestGeneratorUsesProvider(t *testing.T) {
	g := NewGenerator(&stubProvider{tips: []string{"a", "b"}}, true)
	got := g.Generate(context.Background(), sampleRequest())
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Expected provider tips, got %v", got)
	}
}

func TestGeneratorProviderFailureMatchesRuleBased(t *testing.T) {
	req := sampleRequest()
	g := NewGenerator(&stubProvider{err: errors.New("timeout")}, true)
	got := g.Generate(context.Background(), req)
	want := RuleBased(req.Totals)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Provider failure must equal direct rule-based output: %v vs %v", got, want)
	}
}

func TestGeneratorDisabledSkipsProvider(t *testing.T) {
	req := sampleRequest()
	g := NewGenerator(&stubProvider{tips: []string{"never"}}, false)
	got := g.Generate(context.Background(), req)
	want := RuleBased(req.Totals)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Disabled generator must use rules, got %v", got)
	}
}

func TestGeneratorNilProvider(t *testing.T) {
	g := NewGenerator(nil, true)
	got := g.Generate(context.Background(), sampleRequest())
	if len(got) == 0 {
		t.Error("Nil provider must still produce rule-based tips")
	}
}

func TestGeneratorCapsAtFour(t *testing.T) {
	g := NewGenerator(&stubProvider{tips: []string{"1", "2", "3", "4", "5", "6"}}, true)
	got := g.Generate(context.Background(), sampleRequest())
	if len(got) != 4 {
		t.Errorf("Expected cap at 4 tips, got %d", len(got))
	}
}

func TestHuggingFaceProviderSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("Missing bearer auth, got %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`[{"generated_text":"[\"Add a side salad\", \"Swap soda for water\"]"}]`))
	}))
	defer srv.Close()

	p := NewHuggingFace("key", WithHFURL(srv.URL))
	got, err := p.Generate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Add a side salad", "Swap soda for water"}) {
		t.Errorf("Unexpected tips: %v", got)
	}
}

func TestHuggingFaceModelLoadingRetriesOnce(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"generated_text":"[\"Nice balance\", \"Keep it up\"]"}]`))
	}))
	defer srv.Close()

	p := NewHuggingFace("key", WithHFURL(srv.URL), WithRetryDelay(time.Millisecond))
	got, err := p.Generate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Generate should recover after one retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected exactly 2 calls, got %d", calls)
	}
	if len(got) != 2 {
		t.Errorf("Unexpected tips: %v", got)
	}
}

func TestHuggingFaceLoadingTwiceFails(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewHuggingFace("key", WithHFURL(srv.URL), WithRetryDelay(time.Millisecond))
	if _, err := p.Generate(context.Background(), sampleRequest()); err == nil {
		t.Error("Expected error when model never loads")
	}
	if calls != 2 {
		t.Errorf("Exactly one retry allowed, got %d calls", calls)
	}
}

func TestHuggingFaceMissingKey(t *testing.T) {
	p := NewHuggingFace("")
	if _, err := p.Generate(context.Background(), sampleRequest()); err == nil {
		t.Error("Missing API key must fail (recovered by the chain)")
	}
}

func TestOpenAIProviderFencedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` +
			"```json\\n[\\\"Tip one\\\", \\\"Tip two\\\"]\\n```" + `"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAI("key", WithOpenAIURL(srv.URL))
	got, err := p.Generate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Tip one", "Tip two"}) {
		t.Errorf("Unexpected tips: %v", got)
	}
}

func TestOpenAINon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAI("key", WithOpenAIURL(srv.URL))
	if _, err := p.Generate(context.Background(), sampleRequest()); err == nil {
		t.Error("Expected error for 429 response")
	}
}

func TestAnthropicProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "key" {
			t.Errorf("Missing x-api-key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("Missing anthropic-version header")
		}
		w.Write([]byte(`{"content":[{"type":"text","text":"[\"Swap fries for salad\", \"Add water\"]"}]}`))
	}))
	defer srv.Close()

	p := NewAnthropic("key", WithAnthropicURL(srv.URL))
	got, err := p.Generate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Unexpected tips: %v", got)
	}
}

func TestParseTipArray(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
		ok   bool
	}{
		{"plain", `["a","b"]`, []string{"a", "b"}, true},
		{"fenced", "```json\n[\"a\",\"b\"]\n```", []string{"a", "b"}, true},
		{"fenced no lang", "```\n[\"a\"]\n```", []string{"a"}, true},
		{"embedded", `Here you go: ["a","b"] enjoy!`, []string{"a", "b"}, true},
		{"empty array", `[]`, nil, false},
		{"not json", `no tips today`, nil, false},
		{"object", `{"tips":1}`, nil, false},
	}
	for _, tc := range cases {
		got, err := parseTipArray(tc.in)
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
			continue
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("%s: expected error, got %v", tc.name, got)
			}
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}
