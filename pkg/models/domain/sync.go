package domain

import "time"

type SyncStatus string

const (
	SyncStatusRunning  SyncStatus = "running"
	SyncStatusFinished SyncStatus = "finished"
	SyncStatusFailed   SyncStatus = "failed"
)

type ItemStatus string

const (
	ItemStatusOK      ItemStatus = "ok"
	ItemStatusSkipped ItemStatus = "skipped"
)

// ItemResult records the outcome of one per-item sub-operation of a stage, for
// example one tool listing for one repository.
type ItemResult struct {
	Repository string
	Item       string
	Status     ItemStatus
	Reason     string
}

// BatchReport collects the item results of a single stage.
type BatchReport struct {
	Stage     string
	Processed int
	Items     []ItemResult
}

func NewBatchReport(stage string) *BatchReport {
	return &BatchReport{Stage: stage, Items: []ItemResult{}}
}

func (b *BatchReport) OK(repository, item string) {
	b.Items = append(b.Items, ItemResult{Repository: repository, Item: item, Status: ItemStatusOK})
}

func (b *BatchReport) Skip(repository, item string, err error) {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	b.SkipWithReason(repository, item, reason)
}

func (b *BatchReport) SkipWithReason(repository, item, reason string) {
	b.Items = append(b.Items, ItemResult{
		Repository: repository,
		Item:       item,
		Status:     ItemStatusSkipped,
		Reason:     reason,
	})
}

func (b *BatchReport) Skipped() []ItemResult {
	var res []ItemResult
	for _, item := range b.Items {
		if item.Status == ItemStatusSkipped {
			res = append(res, item)
		}
	}
	return res
}

type StageReport struct {
	Name       string
	StartedAt  time.Time
	FinishedAt time.Time
	Batch      *BatchReport
	Error      *string
}

type SyncReport struct {
	ID         string
	Status     SyncStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Stages     []StageReport
	Error      *string
}

func (r *SyncReport) Stage(name string) *StageReport {
	for i := range r.Stages {
		if r.Stages[i].Name == name {
			return &r.Stages[i]
		}
	}
	return nil
}
