package store

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/eduassess/eduassess-backend/internal/model"
)

// ReconcileOp names a deferred remote write.
type ReconcileOp string

const (
	OpDeletePaper       ReconcileOp = "delete_paper"
	OpDeleteSubmissions ReconcileOp = "delete_submissions"
	OpInsertSubmission  ReconcileOp = "insert_submission"
	OpUpsertStudent     ReconcileOp = "upsert_student"
)

// ReconcileTask is a remote write that failed while the application was
// online, queued for retry by the reconcile worker. The optimistic local
// commit has already happened; the task only repairs remote drift.
type ReconcileTask struct {
	Op         ReconcileOp           `json:"op"`
	PaperID    uuid.UUID             `json:"paper_id,omitempty"`
	Submission *model.Submission     `json:"submission,omitempty"`
	Student    *model.StudentProfile `json:"student,omitempty"`
}

// Marshal encodes the task for the queue.
func (t ReconcileTask) Marshal() ([]byte, error) {
	return json.Marshal(t)
}

// UnmarshalReconcileTask decodes a queued task.
func UnmarshalReconcileTask(payload []byte) (ReconcileTask, error) {
	var t ReconcileTask
	err := json.Unmarshal(payload, &t)
	return t, err
}
