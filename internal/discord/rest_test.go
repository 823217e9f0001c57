package discord

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type capturedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

// rewriteTransport sends every request to the test server instead of Discord.
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func newFakeDiscord(t *testing.T) (*discordgo.Session, func() []capturedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []capturedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		mu.Lock()
		reqs = append(reqs, capturedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","channel_id":"c1","content":"ok"}`))
	}))
	t.Cleanup(srv.Close)

	target, _ := url.Parse(srv.URL)
	s, err := NewSession("test-token")
	if err != nil {
		t.Fatal(err)
	}
	s.Client = &http.Client{Transport: rewriteTransport{target: target}}
	return s, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), reqs...)
	}
}

func TestResponder_EditAndFollowUp(t *testing.T) {
	s, captured := newFakeDiscord(t)
	r := NewResponder(s)
	i := &discordgo.Interaction{AppID: "app1", Token: "tok1"}
	ctx := context.Background()

	if err := r.EditOriginal(ctx, i, "eerste deel"); err != nil {
		t.Fatalf("EditOriginal: %v", err)
	}
	if err := r.FollowUp(ctx, i, "tweede deel"); err != nil {
		t.Fatalf("FollowUp: %v", err)
	}

	reqs := captured()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	if reqs[0].Method != http.MethodPatch || !strings.HasSuffix(reqs[0].Path, "/webhooks/app1/tok1/messages/@original") {
		t.Errorf("edit request = %s %s", reqs[0].Method, reqs[0].Path)
	}
	if reqs[0].Body["content"] != "eerste deel" {
		t.Errorf("edit body = %v", reqs[0].Body)
	}
	if reqs[1].Method != http.MethodPost || !strings.HasSuffix(reqs[1].Path, "/webhooks/app1/tok1") {
		t.Errorf("follow-up request = %s %s", reqs[1].Method, reqs[1].Path)
	}
	if flags, _ := reqs[1].Body["flags"].(float64); int(flags) != int(discordgo.MessageFlagsEphemeral) {
		t.Errorf("follow-up flags = %v", reqs[1].Body["flags"])
	}
}

func TestChannelNotifier_Notify(t *testing.T) {
	s, captured := newFakeDiscord(t)
	n := NewChannelNotifier(s, "log-channel")

	if err := n.Notify(context.Background(), "Maandrapport verzonden"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	reqs := captured()
	if len(reqs) != 1 || !strings.HasSuffix(reqs[0].Path, "/channels/log-channel/messages") {
		t.Fatalf("requests = %+v", reqs)
	}
	if reqs[0].Body["content"] != "Maandrapport verzonden" {
		t.Errorf("body = %v", reqs[0].Body)
	}
}

func TestDeployCommands(t *testing.T) {
	s, captured := newFakeDiscord(t)

	// The fake answers with an object, so decoding the list fails; the request
	// itself is what matters here.
	_, _ = DeployCommands(context.Background(), s, "app1", "guild1")

	reqs := captured()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if reqs[0].Method != http.MethodPut || !strings.HasSuffix(reqs[0].Path, "/applications/app1/guilds/guild1/commands") {
		t.Errorf("deploy request = %s %s", reqs[0].Method, reqs[0].Path)
	}
}
