package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

// Recorder persists the run trace.
type Recorder interface {
	CreateRun(ctx context.Context, run *domain.Run) error
	UpdateRunCompleted(ctx context.Context, runID string, status domain.RunStatus, iterations int, errData []byte) error
	CreateEvent(ctx context.Context, event *domain.Event) error
}

// recordEvent records an event to the store. Trace failures are logged and
// never interrupt the turn.
func (t *Turn) recordEvent(ctx context.Context, eventType domain.EventType, payload interface{}) {
	rec := t.loop.recorder
	if rec == nil {
		return
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("failed to marshal event payload", "type", eventType, "err", err)
		return
	}

	event := &domain.Event{
		EventID: "evt_" + uuid.New().String()[:8],
		RunID:   t.RunID,
		Ts:      time.Now().UnixMilli(),
		Type:    eventType,
		Payload: payloadBytes,
	}

	if err := rec.CreateEvent(context.WithoutCancel(ctx), event); err != nil {
		slog.Warn("failed to record event", "run_id", t.RunID, "type", eventType, "err", err)
	}
}

func (t *Turn) recordStart(ctx context.Context, historyLen int) {
	rec := t.loop.recorder
	if rec == nil {
		return
	}
	run := &domain.Run{RunID: t.RunID, Status: domain.RunStatusRunning, StartedAt: time.Now()}
	if err := rec.CreateRun(context.WithoutCancel(ctx), run); err != nil {
		slog.Warn("failed to record run", "run_id", t.RunID, "err", err)
		return
	}
	t.recordEvent(ctx, domain.EventTypeRunStarted, domain.RunStartedPayload{
		Input:        t.input,
		HistoryLen:   historyLen,
		MaxIteration: t.loop.maxIterations,
	})
}

func (t *Turn) recordEnd(ctx context.Context) {
	rec := t.loop.recorder
	if rec == nil {
		return
	}

	status := domain.RunStatusDone
	var errData []byte
	switch {
	case t.state == StateError:
		status = domain.RunStatusFailed
		errData, _ = json.Marshal(map[string]string{"message": t.err.Error()})
		t.recordEvent(ctx, domain.EventTypeRunFailed, domain.RunFailedPayload{Iterations: t.iterations, Error: t.err.Error()})
	case t.exhausted:
		status = domain.RunStatusExhausted
		errData, _ = json.Marshal(map[string]string{"message": domain.ErrIterationLimit.Error()})
		t.recordEvent(ctx, domain.EventTypeRunDone, domain.RunDonePayload{Iterations: t.iterations, Exhausted: true})
	default:
		t.recordEvent(ctx, domain.EventTypeRunDone, domain.RunDonePayload{Iterations: t.iterations})
	}

	if err := rec.UpdateRunCompleted(context.WithoutCancel(ctx), t.RunID, status, t.iterations, errData); err != nil {
		slog.Warn("failed to complete run", "run_id", t.RunID, "err", err)
	}
}
