package escalation

import (
	"context"
	"errors"
	"testing"
	"time"
)

type captureNotifier struct {
	records []Record
	err     error
}

func (n *captureNotifier) EscalationRaised(ctx context.Context, rec Record) error {
	n.records = append(n.records, rec)
	return n.err
}

func TestEscalateKnownTriggers(t *testing.T) {
	m := NewManager(nil)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	cases := []struct {
		trigger  Trigger
		wantRole string
	}{
		{TriggerQualityIssue, "QUALITY_LEAD"},
		{TriggerResourceConflict, "CAPACITY_MANAGER"},
		{TriggerScopeChange, "PRODUCT_OWNER"},
	}
	for _, tc := range cases {
		rec := m.Escalate(context.Background(), tc.trigger, "details")
		if rec.AssignedRole != tc.wantRole {
			t.Errorf("%s assigned to %q, want %q", tc.trigger, rec.AssignedRole, tc.wantRole)
		}
		if len(rec.Actions) != 3 {
			t.Errorf("%s: expected 3 actions, got %d", tc.trigger, len(rec.Actions))
		}
		if !rec.ExpectedResolution.Equal(now.Add(48 * time.Hour)) {
			t.Errorf("%s: expected resolution at now+48h, got %v", tc.trigger, rec.ExpectedResolution)
		}
		if rec.ID == "" {
			t.Errorf("%s: record needs an ID", tc.trigger)
		}
	}
}

func TestEscalateFallsBackToDefaultPlaybook(t *testing.T) {
	m := NewManager(nil)
	delay := m.Escalate(context.Background(), TriggerTimelineDelay, "")
	unknown := m.Escalate(context.Background(), Trigger("SOMETHING_NEW"), "")
	if delay.AssignedRole != "DELIVERY_COORDINATOR" || unknown.AssignedRole != "DELIVERY_COORDINATOR" {
		t.Fatalf("default playbook not applied: %q / %q", delay.AssignedRole, unknown.AssignedRole)
	}
	if delay.ID == unknown.ID {
		t.Fatal("records must get distinct IDs")
	}
}

func TestEscalateNotifies(t *testing.T) {
	n := &captureNotifier{}
	m := NewManager(n)
	rec := m.Escalate(context.Background(), TriggerQualityIssue, "gate failed at 0.7")
	if len(n.records) != 1 || n.records[0].ID != rec.ID {
		t.Fatalf("notifier should receive the record: %+v", n.records)
	}
	if n.records[0].Details != "gate failed at 0.7" {
		t.Fatalf("details not carried: %q", n.records[0].Details)
	}
}

func TestEscalateSurvivesNotifierError(t *testing.T) {
	n := &captureNotifier{err: errors.New("channel down")}
	m := NewManager(n)
	rec := m.Escalate(context.Background(), TriggerScopeChange, "")
	if rec.ID == "" || rec.AssignedRole != "PRODUCT_OWNER" {
		t.Fatalf("escalation must succeed despite notifier failure: %+v", rec)
	}
}

func TestRecordActionsAreCopies(t *testing.T) {
	m := NewManager(nil)
	rec := m.Escalate(context.Background(), TriggerQualityIssue, "")
	rec.Actions[0] = "tampered"
	next := m.Escalate(context.Background(), TriggerQualityIssue, "")
	if next.Actions[0] == "tampered" {
		t.Fatal("playbook actions must not be shared between records")
	}
}
