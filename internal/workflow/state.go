// Package workflow drives a press-release distribution session through its
// stages: generation, topic confirmation, recipient discovery, email send
// and social posting. Every side-effecting stage is gated on an explicit
// operator approval that is consumed by the stage it unlocks.
package workflow

import (
	"maps"
	"slices"

	"github.com/mediareach/press-cli/internal/model"
)

// Step identifies a workflow stage.
type Step string

// Workflow steps in execution order.
const (
	StepInitial      Step = "initial"
	StepPressRelease Step = "press_release"
	StepTopics       Step = "topics"
	StepRecipients   Step = "recipients"
	StepEmail        Step = "email"
	StepSocialMedia  Step = "social_media"
)

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	switch s {
	case StepInitial, StepPressRelease, StepTopics, StepRecipients, StepEmail, StepSocialMedia:
		return true
	}
	return false
}

// State is the single session record threaded through every stage. It is
// owned by one operator session; stages run sequentially against it.
type State struct {
	SessionID     string            `json:"session_id"`
	Topic         string            `json:"topic"`
	PressRelease  string            `json:"press_release"`
	Topics        []string          `json:"topics"`
	Recipients    []model.Recipient `json:"recipients"`
	EmailResults  map[string]bool   `json:"email_results"`
	SocialResults map[string]bool   `json:"social_results"`
	CurrentStep   Step              `json:"current_step"`
	Approved      bool              `json:"approved"`
}

// Clone returns a deep copy, so callers can inspect the state without
// aliasing the session's slices and maps.
func (s *State) Clone() State {
	out := *s
	out.Topics = slices.Clone(s.Topics)
	out.Recipients = slices.Clone(s.Recipients)
	out.EmailResults = maps.Clone(s.EmailResults)
	out.SocialResults = maps.Clone(s.SocialResults)
	return out
}
