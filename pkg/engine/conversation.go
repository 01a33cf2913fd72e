package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agentviz/agentviz/pkg/api"
	"github.com/agentviz/agentviz/pkg/jobs"
	"github.com/agentviz/agentviz/pkg/observability"
	"github.com/agentviz/agentviz/pkg/provider"
)

// errCancelled signals that the job observed its cancellation flag and
// has already transitioned to the cancelled status.
var errCancelled = errors.New("job cancelled")

// exchangeSpec carries the per-job conversation inputs.
type exchangeSpec struct {
	analystModel  string
	coderModel    string
	analystPrompt string
	kickoff       string
}

// runExchange drives the round-robin message exchange: the proxy opens
// with the kickoff, then analyst, coder, and proxy take turns until the
// coder delivers a chart configuration or the round limit is reached.
// The cancellation flag is checked at every message-emission point.
func (e *Engine) runExchange(ctx context.Context, job *jobs.Job, spec exchangeSpec) error {
	if err := e.emit(job, participantProxy, api.RoleProxy, spec.kickoff); err != nil {
		return err
	}

	for turn := 0; turn < e.cfg.maxRounds(); turn++ {
		switch turn % 3 {
		case 0:
			content, err := e.speak(ctx, job, participantAnalyst, spec.analystModel, spec.analystPrompt)
			if err != nil {
				return err
			}
			if err := e.emit(job, participantAnalyst, api.RoleAnalyst, content); err != nil {
				return err
			}
		case 1:
			content, err := e.speak(ctx, job, participantCoder, spec.coderModel, coderPrompt)
			if err != nil {
				return err
			}
			if err := e.emit(job, participantCoder, api.RoleCoder, content); err != nil {
				return err
			}
			if terminated(content) {
				return nil
			}
		case 2:
			if err := e.emit(job, participantProxy, api.RoleProxy, proxyAck); err != nil {
				return err
			}
		}
	}

	// Round limit reached without the trigger: best effort, whatever
	// the coder produced so far is used downstream.
	return nil
}

// terminated reports whether a coder message carries a complete chart
// configuration, ending the exchange early.
func terminated(content string) bool {
	return strings.Contains(content, "```javascript") && strings.Contains(content, "series")
}

// emit appends one participant message to the job and the activity log.
// If the cancellation flag is set, it instead finalizes the job as
// cancelled and reports errCancelled; the message is dropped whole,
// never partially recorded.
func (e *Engine) emit(job *jobs.Job, participant string, role api.Role, content string) error {
	if job.CancelRequested() {
		job.FinishCancelled()
		return errCancelled
	}
	job.Append(api.Message{
		ID:          api.NewMessageID(),
		Participant: participant,
		Role:        role,
		Content:     content,
		CreatedAt:   time.Now(),
	})
	e.activity.Append("message", fmt.Sprintf("[%s] %s", participant, content))
	return nil
}

// speak asks the model bound to a participant for its next message. The
// conversation so far is replayed with the speaker's own messages in
// the assistant role and everyone else's as attributed user messages.
func (e *Engine) speak(ctx context.Context, job *jobs.Job, participant, modelID, systemPrompt string) (string, error) {
	prov, model, apiErr := e.models.Resolve(modelID)
	if apiErr != nil {
		return "", apiErr
	}

	msgs := []provider.Message{{Role: "system", Content: systemPrompt}}
	for _, m := range job.Snapshot().Messages {
		if m.Role == api.RoleSystem {
			continue
		}
		if m.Participant == participant {
			msgs = append(msgs, provider.Message{Role: "assistant", Content: m.Content})
		} else {
			msgs = append(msgs, provider.Message{
				Role:    "user",
				Content: fmt.Sprintf("[%s] %s", m.Participant, m.Content),
			})
		}
	}

	provName := prov.Name()
	start := time.Now()
	resp, err := prov.Complete(ctx, &provider.ChatRequest{Model: model, Messages: msgs})
	elapsed := time.Since(start)
	if err != nil {
		observability.ModelRequestsTotal.WithLabelValues(provName, model, "error").Inc()
		observability.ModelLatency.WithLabelValues(provName, model).Observe(elapsed.Seconds())
		if job.CancelRequested() {
			job.FinishCancelled()
			return "", errCancelled
		}
		return "", err
	}
	observability.ModelRequestsTotal.WithLabelValues(provName, model, "success").Inc()
	observability.ModelLatency.WithLabelValues(provName, model).Observe(elapsed.Seconds())
	observability.ModelTokensTotal.WithLabelValues(provName, model, "input").Add(float64(resp.Usage.PromptTokens))
	observability.ModelTokensTotal.WithLabelValues(provName, model, "output").Add(float64(resp.Usage.CompletionTokens))

	return resp.Content, nil
}
