package entity

import "context"

// MaxBatchOps is the hard per-commit operation limit of the backing store.
const MaxBatchOps = 500

type BatchOpKind string

const (
	BatchUpdate BatchOpKind = "update"
	BatchDelete BatchOpKind = "delete"
)

type BatchOp struct {
	Kind     BatchOpKind
	LeadID   string
	Mutation LeadMutation
}

// WriteBatch collects operations committed together by LeadStore.Commit.
type WriteBatch struct {
	ops []BatchOp
}

func NewWriteBatch() *WriteBatch {
	return &WriteBatch{}
}

func (b *WriteBatch) Update(leadID string, m LeadMutation) {
	b.ops = append(b.ops, BatchOp{Kind: BatchUpdate, LeadID: leadID, Mutation: m})
}

func (b *WriteBatch) Delete(leadID string) {
	b.ops = append(b.ops, BatchOp{Kind: BatchDelete, LeadID: leadID})
}

func (b *WriteBatch) Ops() []BatchOp { return b.ops }

func (b *WriteBatch) Len() int { return len(b.ops) }

// Validate rejects batches the store could not commit in one go.
func (b *WriteBatch) Validate() error {
	if len(b.ops) > MaxBatchOps {
		return ErrBatchTooLarge
	}
	return nil
}

// LeadQuery filters List and Subscribe. Zero value matches every lead.
type LeadQuery struct {
	AssignedAgentID string
	Limit           int
}

func (q LeadQuery) Matches(l *Lead) bool {
	if q.AssignedAgentID != "" && l.AssignedAgentID != q.AssignedAgentID {
		return false
	}
	return true
}

type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// LeadChange is one live notification. Lead is nil for removals.
type LeadChange struct {
	Type   ChangeType `json:"type"`
	LeadID string     `json:"leadId"`
	Lead   *Lead      `json:"lead,omitempty"`
}

// LeadStore is the document store behind every lead mutation.
//
// Update applies the patch and the journal append in one atomic write; two
// concurrent appends to the same lead must both survive. UpdateJournal is a
// read-modify-write of the journal under the store's lock or transaction and
// is reserved for entry deletion.
type LeadStore interface {
	Create(ctx context.Context, lead *Lead) (string, error)
	Get(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, q LeadQuery) ([]*Lead, error)
	Update(ctx context.Context, id string, m LeadMutation) error
	Delete(ctx context.Context, id string) error
	Commit(ctx context.Context, batch *WriteBatch) error
	UpdateJournal(ctx context.Context, id string, fn func(*Lead) error) error
	Subscribe(ctx context.Context, q LeadQuery) (<-chan LeadChange, error)
}
