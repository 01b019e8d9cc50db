package tasks

import (
	"context"
	"log/slog"
)

// ViewRefresher re-runs the most recent fetch request.
type ViewRefresher interface {
	Refresh() bool
}

// RefreshViewTask keeps the active view fresh by re-issuing its fetch. A view
// that has never fetched is not an error, just nothing to do.
type RefreshViewTask struct {
	Task
	orch ViewRefresher
}

func NewRefreshViewTask(orch ViewRefresher) *RefreshViewTask {
	return &RefreshViewTask{
		Task: NewTask(TaskTypeRefreshView),
		orch: orch,
	}
}

func (t *RefreshViewTask) Execute(_ context.Context) error {
	if !t.orch.Refresh() {
		slog.Debug("No active view to refresh")
		return nil
	}

	slog.Debug("Active view refresh started", "duration", t.GetDuration().String())
	return nil
}
