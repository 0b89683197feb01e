package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/slack-go/slack"

	"github.com/topher/seiri-portal-sub002/internal/escalation"
)

func testRecord() escalation.Record {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return escalation.Record{
		ID:                 "esc-1",
		Trigger:            escalation.TriggerQualityIssue,
		AssignedRole:       "QUALITY_LEAD",
		Details:            "final gate failed at 0.72",
		Actions:            []string{"Review the deliverable", "Schedule remediation"},
		CreatedAt:          created,
		ExpectedResolution: created.Add(48 * time.Hour),
	}
}

func TestEscalationRaisedPostsToChannel(t *testing.T) {
	var gotPath, gotChannel, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotChannel = r.Form.Get("channel")
		gotText = r.Form.Get("text")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1614000000.000100"}`))
	}))
	defer server.Close()

	n := NewSlackNotifier("test-token", "C123",
		slack.OptionAPIURL(server.URL+"/"),
		slack.OptionHTTPClient(server.Client()))

	if err := n.EscalationRaised(context.Background(), testRecord()); err != nil {
		t.Fatalf("escalation raised: %v", err)
	}
	if gotPath != "/chat.postMessage" {
		t.Fatalf("posted to %q", gotPath)
	}
	if gotChannel != "C123" {
		t.Fatalf("channel %q", gotChannel)
	}
	if !strings.Contains(gotText, "QUALITY_ISSUE") || !strings.Contains(gotText, "QUALITY_LEAD") {
		t.Fatalf("message text missing fields: %q", gotText)
	}
}

func TestEscalationRaisedSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer server.Close()

	n := NewSlackNotifier("test-token", "C404",
		slack.OptionAPIURL(server.URL+"/"),
		slack.OptionHTTPClient(server.Client()))

	err := n.EscalationRaised(context.Background(), testRecord())
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("expected channel_not_found error, got %v", err)
	}
}

func TestFormatEscalation(t *testing.T) {
	text := FormatEscalation(testRecord())
	for _, want := range []string{
		"Escalation QUALITY_ISSUE (esc-1)",
		"Assigned to: QUALITY_LEAD",
		"Resolve by: 2026-03-03T10:00:00Z",
		"Details: final gate failed at 0.72",
		"- Review the deliverable",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("formatted message missing %q:\n%s", want, text)
		}
	}
}
