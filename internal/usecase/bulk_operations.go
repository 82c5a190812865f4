package usecase

import (
	"context"

	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/internal/observability/metrics"
	"github.com/kdacanay/wrc-leads/pkg/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultBulkChunkSize stays below entity.MaxBatchOps.
const DefaultBulkChunkSize = 450

const (
	bulkOpAssign = "assign"
	bulkOpDelete = "delete"
)

// BulkOperationsUseCase commits multi-lead changes in chunks. A failed chunk
// stops the run; chunks already committed stay applied.
type BulkOperationsUseCase struct {
	Journal   *JournalService
	Users     entity.UserRepositoryInterface
	Notifier  *AssignmentNotifier
	Metrics   *metrics.LeadMetrics
	ChunkSize int
	Logger    *logging.Logger
}

func NewBulkOperationsUseCase(
	journal *JournalService,
	users entity.UserRepositoryInterface,
	notifier *AssignmentNotifier,
	m *metrics.LeadMetrics,
	chunkSize int,
	logger *logging.Logger,
) *BulkOperationsUseCase {
	if logger == nil {
		logger = logging.Default()
	}
	return &BulkOperationsUseCase{
		Journal:   journal,
		Users:     users,
		Notifier:  notifier,
		Metrics:   m,
		ChunkSize: chunkSize,
		Logger:    logger,
	}
}

func (uc *BulkOperationsUseCase) chunkSize() int {
	if uc.ChunkSize <= 0 || uc.ChunkSize > entity.MaxBatchOps {
		return DefaultBulkChunkSize
	}
	return uc.ChunkSize
}

// BulkAssign assigns every listed lead to one agent. Unknown lead ids are
// ignored.
func (uc *BulkOperationsUseCase) BulkAssign(ctx context.Context, actor entity.Actor, leadIDs []string, agentID string) (BulkResult, error) {
	ctx, span := tracer.Start(ctx, "bulk.assign")
	defer span.End()

	result := BulkResult{Requested: len(leadIDs)}
	if !actor.IsAdmin() {
		return result, NewDomainError(CodePermissionDenied, "Only admins can assign leads.")
	}
	if agentID == "" {
		return result, NewDomainError(CodeValidation, "agentId: is required")
	}

	agent, err := findAgent(ctx, uc.Journal.Guard, uc.Users, agentID)
	if err != nil {
		return result, err
	}

	index, err := uc.loadIndex(ctx)
	if err != nil {
		return result, err
	}

	var leads []*entity.Lead
	for _, id := range dedupe(leadIDs) {
		if lead, ok := index[id]; ok {
			leads = append(leads, lead)
		}
	}
	span.SetAttributes(attribute.Int("bulk.leads", len(leads)))

	size := uc.chunkSize()
	for start := 0; start < len(leads); start += size {
		chunk := leads[start:min(start+size, len(leads))]
		batch := entity.NewWriteBatch()
		for _, lead := range chunk {
			text := AssignmentText(lead, agent, true)
			m, err := uc.Journal.BuildMutation(actor, assignmentPatch(agent), entity.JournalTypeBulkAssignment, text)
			if err != nil {
				return result, err
			}
			batch.Update(lead.ID, m)
		}

		if err := uc.commit(ctx, bulkOpAssign, batch); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "chunk failed")
			return result, err
		}
		result.Chunks++
		result.Committed += len(chunk)

		for _, lead := range chunk {
			uc.Journal.Metrics.ObserveJournalAppend(entity.JournalTypeBulkAssignment)
			uc.Notifier.Notify(ctx, lead, agent, actor, true)
		}
	}

	uc.Logger.Info("bulk assign complete", "agent_id", agent.ID, "committed", result.Committed, "chunks", result.Chunks)
	return result, nil
}

// BulkDelete removes every listed lead.
func (uc *BulkOperationsUseCase) BulkDelete(ctx context.Context, actor entity.Actor, leadIDs []string) (BulkResult, error) {
	ctx, span := tracer.Start(ctx, "bulk.delete")
	defer span.End()

	result := BulkResult{Requested: len(leadIDs)}
	if !actor.IsAdmin() {
		return result, NewDomainError(CodePermissionDenied, "Only admins can delete leads.")
	}

	ids := dedupe(leadIDs)
	span.SetAttributes(attribute.Int("bulk.leads", len(ids)))

	size := uc.chunkSize()
	for start := 0; start < len(ids); start += size {
		chunk := ids[start:min(start+size, len(ids))]
		batch := entity.NewWriteBatch()
		for _, id := range chunk {
			batch.Delete(id)
		}

		if err := uc.commit(ctx, bulkOpDelete, batch); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "chunk failed")
			return result, err
		}
		result.Chunks++
		result.Committed += len(chunk)
	}

	uc.Logger.Info("bulk delete complete", "committed", result.Committed, "chunks", result.Chunks)
	return result, nil
}

func (uc *BulkOperationsUseCase) commit(ctx context.Context, operation string, batch *entity.WriteBatch) error {
	err := uc.Journal.Guard.Do(ctx, "lead.commit", func(ctx context.Context) error {
		return uc.Journal.Store.Commit(ctx, batch)
	})
	uc.Metrics.ObserveBulkChunk(operation, err)
	if err != nil {
		uc.Logger.Error("bulk chunk failed", "operation", operation, "ops", batch.Len(), "error", err)
		return &TechnicalError{Code: CodeBulkChunkFailed, Message: "Bulk operation failed; earlier chunks were applied.", Err: err}
	}
	return nil
}

func (uc *BulkOperationsUseCase) loadIndex(ctx context.Context) (map[string]*entity.Lead, error) {
	var leads []*entity.Lead
	err := uc.Journal.Guard.Do(ctx, "lead.list", func(ctx context.Context) error {
		var err error
		leads, err = uc.Journal.Store.List(ctx, entity.LeadQuery{})
		return err
	})
	if err != nil {
		return nil, storeError(err, "Failed to load leads.")
	}
	index := make(map[string]*entity.Lead, len(leads))
	for _, l := range leads {
		index[l.ID] = l
	}
	return index, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
