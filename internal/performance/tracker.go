// Package performance applies post-completion feedback to agent metrics.
package performance

import (
	"log/slog"
	"time"

	"github.com/topher/seiri-portal-sub002/internal/pool"
)

// Outcome is the observed result of one completed assignment.
type Outcome struct {
	Success       bool    `json:"success"`
	QualityScore  float64 `json:"quality_score"` // 0-100
	ActualMinutes float64 `json:"actual_minutes"`
}

// Tracker folds outcomes into an agent's rolling metrics through the
// registry. All updates are synchronous mutations; there is no failure mode
// beyond an unknown agent ID.
type Tracker struct {
	registry *pool.Registry
	now      func() time.Time
}

// NewTracker creates a tracker bound to a registry.
func NewTracker(registry *pool.Registry) *Tracker {
	return &Tracker{registry: registry, now: time.Now}
}

// Update applies one outcome to the agent's metrics and reports whether the
// agent exists.
//
// Quality and completion-time averages move by weight w = min(n, 10)/10
// where n is the task count before this outcome, so samples shift the
// averages more as history accumulates toward the ten-task window. An
// agent's very first outcome therefore leaves both averages at their seeded
// values. Reliability moves by +1 per success and -5 per failure, clamped
// to 0-100.
func (t *Tracker) Update(agentID string, outcome Outcome) bool {
	updated := t.registry.UpdatePerformance(agentID, func(p *pool.Performance) {
		w := float64(min(p.TasksCompleted, 10)) / 10
		p.TasksCompleted++
		p.AvgQualityScore = p.AvgQualityScore*(1-w) + outcome.QualityScore*w
		p.AvgCompletionMinutes = p.AvgCompletionMinutes*(1-w) + outcome.ActualMinutes*w
		if outcome.Success {
			p.ReliabilityScore = clamp(p.ReliabilityScore+1, 0, 100)
		} else {
			p.ReliabilityScore = clamp(p.ReliabilityScore-5, 0, 100)
		}
		p.LastUpdated = t.now()
	})
	if !updated {
		slog.Warn("Performance update for unknown agent", "agent_id", agentID)
		return false
	}
	slog.Debug("Performance updated", "agent_id", agentID, "success", outcome.Success, "quality", outcome.QualityScore)
	return true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
