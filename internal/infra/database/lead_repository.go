package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kdacanay/wrc-leads/internal/entity"
)

const leadColumns = `
	id, first_name, last_name, phone, email, contact,
	status, lead_type, source, relationship_ranking, urgency_ranking,
	first_attempt_date, next_evaluation_date, registration_date, registered_date_raw,
	assigned_agent_id, assigned_agent_name, assigned_agent_email,
	action_item, latest_activity, journal_last_entry, journal,
	created_at, created_by, updated_at, updated_by`

// LeadRepository stores leads in Postgres with the journal in a jsonb column.
// Every write locks the row, so concurrent appends to one lead serialize and
// none is lost.
type LeadRepository struct {
	DB      *sql.DB
	Changes *ChangeFeed
}

// NewLeadRepository wires changes, when given, to reload leads through the
// new repository.
func NewLeadRepository(db *sql.DB, changes *ChangeFeed) *LeadRepository {
	r := &LeadRepository{DB: db, Changes: changes}
	if changes != nil && changes.load == nil {
		changes.load = r.Get
	}
	return r
}

// Create inserts lead under its own id, or a fresh one when it has none.
// Inserting an id that already exists succeeds without touching the row.
func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) (string, error) {
	row := *lead
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if err := insertLead(ctx, r.DB, &row); err != nil {
		return "", mapError(err)
	}
	return row.ID, nil
}

func (r *LeadRepository) Get(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return lead, nil
}

func (r *LeadRepository) List(ctx context.Context, q entity.LeadQuery) ([]*entity.Lead, error) {
	var (
		where []string
		args  []any
	)
	if q.AssignedAgentID != "" {
		args = append(args, q.AssignedAgentID)
		where = append(where, fmt.Sprintf("assigned_agent_id = $%d", len(args)))
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, mapError(err)
		}
		leads = append(leads, lead)
	}
	return leads, mapError(rows.Err())
}

func (r *LeadRepository) Update(ctx context.Context, id string, m entity.LeadMutation) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return mutateLocked(ctx, tx, id, func(l *entity.Lead) error {
			m.ApplyOnce(l)
			return nil
		})
	})
}

func (r *LeadRepository) UpdateJournal(ctx context.Context, id string, fn func(*entity.Lead) error) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return mutateLocked(ctx, tx, id, fn)
	})
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

// Commit applies the batch in one transaction. Updates need an existing lead;
// deletes of missing leads are no-ops.
func (r *LeadRepository) Commit(ctx context.Context, batch *entity.WriteBatch) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, op := range batch.Ops() {
			switch op.Kind {
			case entity.BatchUpdate:
				m := op.Mutation
				err := mutateLocked(ctx, tx, op.LeadID, func(l *entity.Lead) error {
					m.ApplyOnce(l)
					return nil
				})
				if err != nil {
					return err
				}
			case entity.BatchDelete:
				if _, err := tx.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, op.LeadID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Subscribe streams changes through the LISTEN/NOTIFY feed.
func (r *LeadRepository) Subscribe(ctx context.Context, q entity.LeadQuery) (<-chan entity.LeadChange, error) {
	if r.Changes == nil {
		return nil, errors.New("live lead updates are not configured")
	}
	return r.Changes.Subscribe(ctx, q), nil
}

func (r *LeadRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return mapError(err)
	}
	return mapError(tx.Commit())
}

// mutateLocked reads the lead FOR UPDATE, runs fn on it and writes it back.
// An error from fn leaves the row untouched.
func mutateLocked(ctx context.Context, tx *sql.Tx, id string, fn func(*entity.Lead) error) error {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 FOR UPDATE`
	lead, err := scanLead(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return err
	}
	if err := fn(lead); err != nil {
		return err
	}
	lead.ID = id
	return updateLead(ctx, tx, lead)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func insertLead(ctx context.Context, db execer, l *entity.Lead) error {
	journal, err := marshalJournal(l.Journal)
	if err != nil {
		return err
	}
	query := `INSERT INTO leads (` + leadColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
		ON CONFLICT (id) DO NOTHING`
	_, err = db.ExecContext(ctx, query,
		l.ID, l.FirstName, l.LastName, l.Phone, l.Email, l.Contact,
		l.Status, l.LeadType, l.Source, l.RelationshipRanking, l.UrgencyRanking,
		l.FirstAttemptDate, l.NextEvaluationDate, l.RegistrationDate, l.RegisteredDateRaw,
		nullString(l.AssignedAgentID), l.AssignedAgentName, l.AssignedAgentEmail,
		l.ActionItem, l.LatestActivity, l.JournalLastEntry, journal,
		l.CreatedAt, l.CreatedBy, l.UpdatedAt, l.UpdatedBy,
	)
	return err
}

func updateLead(ctx context.Context, db execer, l *entity.Lead) error {
	journal, err := marshalJournal(l.Journal)
	if err != nil {
		return err
	}
	query := `
		UPDATE leads SET
			first_name = $2, last_name = $3, phone = $4, email = $5, contact = $6,
			status = $7, lead_type = $8, source = $9, relationship_ranking = $10, urgency_ranking = $11,
			first_attempt_date = $12, next_evaluation_date = $13, registration_date = $14, registered_date_raw = $15,
			assigned_agent_id = $16, assigned_agent_name = $17, assigned_agent_email = $18,
			action_item = $19, latest_activity = $20, journal_last_entry = $21, journal = $22,
			updated_at = $23, updated_by = $24
		WHERE id = $1`
	_, err = db.ExecContext(ctx, query,
		l.ID, l.FirstName, l.LastName, l.Phone, l.Email, l.Contact,
		l.Status, l.LeadType, l.Source, l.RelationshipRanking, l.UrgencyRanking,
		l.FirstAttemptDate, l.NextEvaluationDate, l.RegistrationDate, l.RegisteredDateRaw,
		nullString(l.AssignedAgentID), l.AssignedAgentName, l.AssignedAgentEmail,
		l.ActionItem, l.LatestActivity, l.JournalLastEntry, journal,
		l.UpdatedAt, l.UpdatedBy,
	)
	return err
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		l        entity.Lead
		assigned sql.NullString
		journal  []byte
	)
	err := row.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.Phone, &l.Email, &l.Contact,
		&l.Status, &l.LeadType, &l.Source, &l.RelationshipRanking, &l.UrgencyRanking,
		&l.FirstAttemptDate, &l.NextEvaluationDate, &l.RegistrationDate, &l.RegisteredDateRaw,
		&assigned, &l.AssignedAgentName, &l.AssignedAgentEmail,
		&l.ActionItem, &l.LatestActivity, &l.JournalLastEntry, &journal,
		&l.CreatedAt, &l.CreatedBy, &l.UpdatedAt, &l.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	l.AssignedAgentID = assigned.String
	if len(journal) > 0 {
		if err := json.Unmarshal(journal, &l.Journal); err != nil {
			return nil, fmt.Errorf("decode journal of lead %s: %w", l.ID, err)
		}
	}
	return &l, nil
}

func marshalJournal(entries []entity.JournalEntry) ([]byte, error) {
	if entries == nil {
		entries = []entity.JournalEntry{}
	}
	return json.Marshal(entries)
}

// mapError converts driver errors into entity sentinels where one applies.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrLeadNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("postgres %s (%s): %w", pgErr.Code, pgErr.ConstraintName, err)
	}
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
