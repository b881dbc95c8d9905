package worker

import (
	"context"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/capogreco/string.assembly.fm-sub005/internal/bank"
	"github.com/capogreco/string.assembly.fm-sub005/internal/ensemble"
)

// TaskTypeSnapshot persists the live performance state so a controller
// restart can recover the working chord/expressions/harmonics.
const TaskTypeSnapshot = "state:snapshot"

// AutosaveBankID is reserved for autosave; operator banks start at 1.
const AutosaveBankID = 0

// SnapshotWorker processes autosave tasks.
type SnapshotWorker struct {
	coordinator *ensemble.Coordinator
	banks       *bank.Store
}

func NewSnapshotWorker(c *ensemble.Coordinator, banks *bank.Store) *SnapshotWorker {
	return &SnapshotWorker{
		coordinator: c,
		banks:       banks,
	}
}

// NewSnapshotTask creates an autosave task. It carries no payload; the
// worker reads the live state at processing time.
func NewSnapshotTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSnapshot, nil)
}

// ProcessTask handles one autosave.
func (w *SnapshotWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	snap := w.coordinator.Snapshot()
	if err := w.banks.Save(ctx, AutosaveBankID, snap); err != nil {
		return fmt.Errorf("failed to autosave state: %w", err)
	}
	log.Printf("Autosaved performance state (%d notes) to bank %d", len(snap.Frequencies), AutosaveBankID)
	return nil
}
