package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mediareach/press-cli/internal/distribute"
	"github.com/mediareach/press-cli/internal/model"
	"github.com/mediareach/press-cli/internal/store"
	"github.com/mediareach/press-cli/pkg/anthropic"
)

// Stage precondition failures surfaced to the operator. Everything else
// (scrape, search, resolution errors) is swallowed inside the stage it
// happened in.
var (
	ErrMissingTopic        = eris.New("workflow: no topic set")
	ErrMissingPressRelease = eris.New("workflow: press release is empty")
	ErrNoRecipients        = eris.New("workflow: no recipients")
	ErrSocialPostFailed    = eris.New("workflow: all social posts failed")
	ErrTerminalStep        = eris.New("workflow: session complete, reset to start over")
	ErrInvalidTransition   = eris.New("workflow: transition not permitted")
)

// Discoverer produces a recipient list for a topic set.
type Discoverer interface {
	Discover(ctx context.Context, topics []string) []model.Recipient
}

// SocialPoster publishes a message across social platforms.
type SocialPoster interface {
	Configured() int
	PostAll(ctx context.Context, message string) map[string]bool
}

// Workflow owns one distribution session.
type Workflow struct {
	generator anthropic.Generator
	engine    Discoverer
	sender    distribute.EmailSender
	poster    SocialPoster
	archive   store.Store // nil disables archiving

	state State
}

// New creates a Workflow with a fresh session. archive may be nil; sender
// and poster may be nil when the corresponding stage will not run.
func New(generator anthropic.Generator, engine Discoverer, sender distribute.EmailSender, poster SocialPoster, archive store.Store) *Workflow {
	return &Workflow{
		generator: generator,
		engine:    engine,
		sender:    sender,
		poster:    poster,
		archive:   archive,
		state:     State{SessionID: uuid.New().String(), CurrentStep: StepInitial},
	}
}

// State returns a snapshot of the session state.
func (w *Workflow) State() State {
	return w.state.Clone()
}

// SetTopic sets the session topic. Only meaningful before generation.
func (w *Workflow) SetTopic(topic string) {
	w.state.Topic = strings.TrimSpace(topic)
}

// SetTopics replaces the extracted topic set. The operator may edit the
// topics before approving discovery.
func (w *Workflow) SetTopics(topics []string) {
	cleaned := make([]string, 0, len(topics))
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	w.state.Topics = cleaned
}

// Approve records the operator's approval for the next stage.
func (w *Workflow) Approve() {
	w.state.Approved = true
}

// Reset discards the session and starts a new one.
func (w *Workflow) Reset() {
	w.state = State{SessionID: uuid.New().String(), CurrentStep: StepInitial}
}

// Back steps the session backwards. Only recipients → topics and
// topics → press_release are permitted; both drop the approval.
func (w *Workflow) Back() error {
	switch w.state.CurrentStep {
	case StepRecipients:
		w.state.CurrentStep = StepTopics
	case StepTopics:
		w.state.CurrentStep = StepPressRelease
	default:
		return eris.Wrapf(ErrInvalidTransition, "cannot step back from %s", w.state.CurrentStep)
	}
	w.state.Approved = false
	return nil
}

// Advance runs the current stage and moves the session forward. A stage
// invoked without approval performs no side effect but still advances, so
// the operator can preview what comes next. Approval is consumed either
// way: every irreversible action needs a fresh one.
func (w *Workflow) Advance(ctx context.Context) error {
	switch w.state.CurrentStep {
	case StepInitial:
		return w.generatePressRelease(ctx)
	case StepPressRelease:
		return w.extractTopics(ctx)
	case StepTopics:
		return w.discoverRecipients(ctx)
	case StepRecipients:
		return w.sendEmails(ctx)
	case StepEmail:
		return w.postSocial(ctx)
	default:
		return ErrTerminalStep
	}
}

const pressReleasePrompt = `Scrivi un comunicato stampa professionale in italiano sul seguente argomento: %s.

Il comunicato deve avere un titolo efficace, un sottotitolo, un paragrafo introduttivo con le informazioni principali, due paragrafi di approfondimento e una breve nota conclusiva sull'azienda. Usa un tono formale e giornalistico.`

func (w *Workflow) generatePressRelease(ctx context.Context) error {
	if w.state.Topic == "" {
		return ErrMissingTopic
	}
	if w.generator == nil {
		return eris.New("workflow: no generation capability configured")
	}

	text, err := w.generator.Generate(ctx, fmt.Sprintf(pressReleasePrompt, w.state.Topic))
	if err != nil {
		return eris.Wrap(err, "workflow: generate press release")
	}

	w.state.PressRelease = text
	w.state.CurrentStep = StepPressRelease
	w.state.Approved = false
	return nil
}

func (w *Workflow) extractTopics(ctx context.Context) error {
	if w.state.Approved {
		if w.state.PressRelease == "" {
			return ErrMissingPressRelease
		}
		w.state.Topics = ExtractTopics(ctx, w.generator, w.state.PressRelease)
	}

	w.state.CurrentStep = StepTopics
	w.state.Approved = false
	return nil
}

func (w *Workflow) discoverRecipients(ctx context.Context) error {
	if w.state.Approved {
		recipients := w.engine.Discover(ctx, w.state.Topics)
		if len(recipients) == 0 {
			// Stay at topics so the operator can adjust and retry.
			w.state.Approved = false
			return ErrNoRecipients
		}
		w.state.Recipients = recipients
		w.saveRecipients(ctx)
	}

	w.state.CurrentStep = StepRecipients
	w.state.Approved = false
	return nil
}

func (w *Workflow) sendEmails(ctx context.Context) error {
	if w.state.Approved {
		if w.state.PressRelease == "" {
			w.state.Approved = false
			return ErrMissingPressRelease
		}
		if len(w.state.Recipients) == 0 {
			w.state.Approved = false
			return ErrNoRecipients
		}

		w.archiveRecord(ctx, store.KindPressRelease, map[string]any{
			"topic":   w.state.Topic,
			"content": w.state.PressRelease,
		})

		subject := "Comunicato stampa: " + w.state.Topic
		w.state.EmailResults = distribute.Emails(ctx, w.sender, subject, w.state.PressRelease, w.state.Recipients)

		w.archiveRecord(ctx, store.KindEmail, map[string]any{
			"topic":   w.state.Topic,
			"subject": subject,
			"results": w.state.EmailResults,
		})
	}

	w.state.CurrentStep = StepEmail
	w.state.Approved = false
	return nil
}

func (w *Workflow) postSocial(ctx context.Context) error {
	if w.state.Approved {
		if w.state.PressRelease == "" {
			w.state.Approved = false
			return ErrMissingPressRelease
		}

		if w.poster != nil {
			results := w.poster.PostAll(ctx, w.state.PressRelease)
			w.state.SocialResults = results
			w.state.Approved = false

			if w.poster.Configured() > 0 && !anySucceeded(results) {
				return ErrSocialPostFailed
			}
		}
	}

	w.state.CurrentStep = StepSocialMedia
	w.state.Approved = false
	return nil
}

func anySucceeded(results map[string]bool) bool {
	for _, ok := range results {
		if ok {
			return true
		}
	}
	return false
}

// archiveRecord persists a JSON envelope best-effort: persistence failure
// never blocks the stage.
func (w *Workflow) archiveRecord(ctx context.Context, kind store.Kind, body map[string]any) {
	if w.archive == nil {
		return
	}

	payload, err := json.Marshal(body)
	if err != nil {
		zap.L().Warn("archive marshal failed", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	if _, err := w.archive.Archive(ctx, store.Record{Kind: kind, Topic: w.state.Topic, Body: payload}); err != nil {
		zap.L().Warn("archive write failed", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (w *Workflow) saveRecipients(ctx context.Context) {
	if w.archive == nil {
		return
	}
	if _, err := w.archive.SaveRecipients(ctx, w.state.SessionID, w.state.Recipients); err != nil {
		zap.L().Warn("recipient save failed", zap.Error(err))
	}
}
