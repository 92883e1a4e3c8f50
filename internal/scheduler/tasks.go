package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadImportCSV = "leads.import.csv"

// LeadImportPayload points at an uploaded CSV. The file is either archived in
// object storage (Bucket and FileKey) or carried inline in Content.
type LeadImportPayload struct {
	JobID    string `json:"jobId"`
	FileName string `json:"fileName"`
	Bucket   string `json:"bucket,omitempty"`
	FileKey  string `json:"fileKey,omitempty"`
	Content  []byte `json:"content,omitempty"`
	ActorID  string `json:"actorId,omitempty"`
}

func NewLeadImportTask(payload LeadImportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadImportCSV, data), nil
}

func ParseLeadImportPayload(task *asynq.Task) (LeadImportPayload, error) {
	var payload LeadImportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadImportPayload{}, err
	}
	return payload, nil
}
