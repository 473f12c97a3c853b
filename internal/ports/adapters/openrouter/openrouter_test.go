package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/forPelevin/viralcut/internal/types"
)

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func testCandidates(n int) []types.Moment {
	ms := make([]types.Moment, 0, n)
	for i := 0; i < n; i++ {
		ms = append(ms, types.Moment{
			ID:    "m",
			Start: float64(i * 20),
			End:   float64(i*20 + 15),
			Score: 0.6,
			Text:  "a hook and a payoff",
		})
	}
	return ms
}

func TestRank(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatResponse(`{"ratings":[` +
			`{"idx":1,"score":9,"justification":" strong hook "},` +
			`{"idx":3,"score":4,"justification":"slow start"},` +
			`{"idx":0,"score":10,"justification":"below range"},` +
			`{"idx":7,"score":10,"justification":"beyond range"}]}`)))
	}))
	defer srv.Close()

	a := New("test-key", "test/model", srv.URL)
	got, err := a.Rank(context.Background(), testCandidates(3), "some context")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("out-of-range idx must be dropped, got %v", got)
	}
	if r := got[1]; r.Score != 9 || r.Justification != "strong hook" {
		t.Fatalf("unexpected rating for idx 1: %+v", r)
	}
	if r := got[3]; r.Score != 4 {
		t.Fatalf("unexpected rating for idx 3: %+v", r)
	}

	if gotBody["model"] != "test/model" {
		t.Fatalf("unexpected model %v", gotBody["model"])
	}
	rf, _ := gotBody["response_format"].(map[string]any)
	if rf["type"] != "json_schema" {
		t.Fatalf("expected json_schema response format, got %v", rf)
	}
}

func TestRank_NoCandidatesSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty candidate list")
	}))
	defer srv.Close()

	a := New("test-key", "", srv.URL)
	got, err := a.Rank(context.Background(), nil, "")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v, %v", got, err)
	}
}

func TestRank_ErrorStatusRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key sk-secret-token"}`))
	}))
	defer srv.Close()

	a := New("sk-secret-token", "", srv.URL)
	_, err := a.Rank(context.Background(), testCandidates(1), "")
	if err == nil {
		t.Fatal("expected error on 401")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("error must carry the status: %v", err)
	}
	if strings.Contains(err.Error(), "sk-secret-token") {
		t.Fatalf("error must not leak the api key: %v", err)
	}
}

func TestRank_MalformedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatResponse("the model refused to answer")))
	}))
	defer srv.Close()

	a := New("test-key", "", srv.URL)
	if _, err := a.Rank(context.Background(), testCandidates(1), ""); err == nil {
		t.Fatal("expected error for non-JSON content")
	}
}

func TestRank_FencedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatResponse("```json\n{\"ratings\":[{\"idx\":1,\"score\":8,\"justification\":\"ok\"}]}\n```")))
	}))
	defer srv.Close()

	a := New("test-key", "", srv.URL)
	got, err := a.Rank(context.Background(), testCandidates(1), "")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if got[1].Score != 8 {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, false},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"fence without language", "```\n{\"a\":1}\n```", `{"a":1}`, false},
		{"prose around object", `Sure: {"a":1} hope that helps`, `{"a":1}`, false},
		{"empty", "   ", "", true},
		{"no object", "no json here", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONObject(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedactSecrets(t *testing.T) {
	in := `Authorization: Bearer sk-abc123, api_key=sk-abc123 and raw sk-abc123`
	out := redactSecrets(in, "sk-abc123")
	if strings.Contains(out, "sk-abc123") {
		t.Fatalf("key leaked: %q", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("expected redaction marker: %q", out)
	}
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		hosts   []string
		wantErr bool
	}{
		{"default", "", nil, false},
		{"allowed host", "https://api.openrouter.ai", nil, false},
		{"http rejected", "http://openrouter.ai", nil, true},
		{"unknown host", "https://evil.example", nil, true},
		{"custom allowlist", "https://proxy.internal", []string{"proxy.internal"}, false},
		{"userinfo rejected", "https://user:pw@openrouter.ai", nil, true},
		{"query rejected", "https://openrouter.ai?x=1", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.url, tt.hosts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateBaseURL(%q) err=%v, wantErr=%v", tt.url, err, tt.wantErr)
			}
		})
	}
}
