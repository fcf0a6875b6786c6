package tracker

import (
	"github.com/bapt252/commitment-tracking/src/domain/shared"
	"github.com/bapt252/commitment-tracking/src/domain/tracking"
)

// MatchProposedInput describes a match surfaced to the user.
type MatchProposedInput struct {
	MatchID    shared.MatchID
	MatchScore float64
	Position   int
}

// TrackMatchProposed records that a match was proposed.
func (t *Tracker) TrackMatchProposed(in MatchProposedInput) bool {
	return t.track(tracking.EventTypeMatchProposed, map[string]any{
		"match_id":    string(in.MatchID),
		"match_score": in.MatchScore,
		"position":    in.Position,
	})
}

// MatchViewedInput describes a match the user opened.
type MatchViewedInput struct {
	MatchID        shared.MatchID
	ViewDurationMS int64
}

// TrackMatchViewed records that a match was viewed.
func (t *Tracker) TrackMatchViewed(in MatchViewedInput) bool {
	return t.track(tracking.EventTypeMatchViewed, map[string]any{
		"match_id":         string(in.MatchID),
		"view_duration_ms": in.ViewDurationMS,
	})
}

// MatchDecisionInput describes an accept or reject decision on a match.
type MatchDecisionInput struct {
	MatchID  shared.MatchID
	Accepted bool
	// Reasons is the free-form reason list accompanying a rejection.
	Reasons []string
}

// TrackMatchDecision records an accepted or rejected match.
func (t *Tracker) TrackMatchDecision(in MatchDecisionInput) bool {
	typ := tracking.EventTypeMatchRejected
	if in.Accepted {
		typ = tracking.EventTypeMatchAccepted
	}
	payload := map[string]any{
		"match_id": string(in.MatchID),
		"accepted": in.Accepted,
	}
	if len(in.Reasons) > 0 {
		payload["reasons"] = in.Reasons
	}
	return t.track(typ, payload)
}

// FeedbackInput carries an explicit user rating of a match.
type FeedbackInput struct {
	MatchID shared.MatchID
	Rating  int
	Comment string
}

// TrackFeedback records user feedback.
func (t *Tracker) TrackFeedback(in FeedbackInput) bool {
	payload := map[string]any{
		"match_id": string(in.MatchID),
		"rating":   in.Rating,
	}
	if in.Comment != "" {
		payload["comment"] = in.Comment
	}
	return t.track(tracking.EventTypeFeedback, payload)
}

// InteractionInput describes a generic UI interaction.
type InteractionInput struct {
	Action   string
	Target   string
	Metadata map[string]any
}

// TrackInteraction records a generic interaction.
func (t *Tracker) TrackInteraction(in InteractionInput) bool {
	payload := map[string]any{
		"action": in.Action,
		"target": in.Target,
	}
	for k, v := range in.Metadata {
		payload[k] = v
	}
	return t.track(tracking.EventTypeInteraction, payload)
}

// CompletionInput marks the end of a flow, completed or abandoned.
type CompletionInput struct {
	Completed  bool
	Reason     string
	DurationMS int64
}

// TrackCompletion records a completed or abandoned flow.
func (t *Tracker) TrackCompletion(in CompletionInput) bool {
	typ := tracking.EventTypeAbandoned
	if in.Completed {
		typ = tracking.EventTypeCompleted
	}
	payload := map[string]any{
		"completed":   in.Completed,
		"duration_ms": in.DurationMS,
	}
	if in.Reason != "" {
		payload["reason"] = in.Reason
	}
	return t.track(typ, payload)
}
