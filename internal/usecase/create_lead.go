package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

const leadCreatedText = "Lead created by admin."

type CreateLeadUseCase struct {
	Store    entity.LeadStore
	Users    entity.UserRepositoryInterface
	Guard    StoreGuard
	Notifier *AssignmentNotifier
	Logger   *logging.Logger
	Now      Clock
}

func NewCreateLeadUseCase(
	store entity.LeadStore,
	users entity.UserRepositoryInterface,
	guard StoreGuard,
	notifier *AssignmentNotifier,
	logger *logging.Logger,
) *CreateLeadUseCase {
	if logger == nil {
		logger = logging.Default()
	}
	return &CreateLeadUseCase{
		Store:    store,
		Users:    users,
		Guard:    guard,
		Notifier: notifier,
		Logger:   logger,
		Now:      time.Now,
	}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, actor entity.Actor, input CreateLeadInput) (*entity.Lead, error) {
	if !actor.IsAdmin() {
		return nil, NewDomainError(CodePermissionDenied, "Only admins can create leads.")
	}
	if err := validationFailure(ValidateCreateLeadInput(input)); err != nil {
		return nil, err
	}

	var agent *entity.User
	if id := strings.TrimSpace(input.AssignedAgentID); id != "" {
		var err error
		agent, err = findAgent(ctx, uc.Guard, uc.Users, id)
		if err != nil {
			return nil, err
		}
	}

	now := uc.Now()
	ts := entity.NewTimestamp(now)
	lead := &entity.Lead{
		FirstName:           strings.TrimSpace(input.FirstName),
		LastName:            strings.TrimSpace(input.LastName),
		Phone:               strings.TrimSpace(input.Phone),
		Email:               strings.TrimSpace(input.Email),
		Status:              entity.LeadStatus(orDefault(input.Status, string(entity.StatusEngagement))),
		LeadType:            entity.LeadType(orDefault(input.LeadType, string(entity.LeadTypeBuyer))),
		Source:              orDefault(input.Source, entity.SourceImportCSV),
		RelationshipRanking: entity.RelationshipRanking(orDefault(input.RelationshipRanking, string(entity.Relationship0))),
		UrgencyRanking:      entity.UrgencyRanking(orDefault(input.UrgencyRanking, string(entity.UrgencyUnsure))),
		RegisteredDateRaw:   strings.TrimSpace(input.RegisteredDate),
		ActionItem:          strings.TrimSpace(input.ActionItem),
		CreatedAt:           ts,
		CreatedBy:           actor.ID,
		UpdatedAt:           ts,
		UpdatedBy:           actor.ID,
	}
	lead.Contact = entity.BuildContact(lead.Phone, lead.Email)
	lead.FirstAttemptDate, _ = entity.ParseTimestamp(input.FirstAttemptDate)
	lead.NextEvaluationDate, _ = entity.ParseTimestamp(input.NextEvaluationDate)
	if reg, err := entity.ParseTimestamp(input.RegisteredDate); err == nil {
		lead.RegistrationDate = reg
	}

	activity := leadCreatedText
	if agent != nil {
		lead.AssignedAgentID = agent.ID
		lead.AssignedAgentName = agent.DisplayName()
		lead.AssignedAgentEmail = agent.Email
		activity += " Assigned to " + lead.AssignedAgentName + "."
	}

	// The note goes first so the creation entry wins the timestamp tie and
	// stays the latest activity.
	if note := strings.TrimSpace(input.Note); note != "" {
		entry, err := entity.NewJournalEntry(actor, entity.JournalTypeAdminNote, AdminNoteText(note), now)
		if err != nil {
			return nil, err
		}
		lead.Journal = append(lead.Journal, entry)
	}
	created, err := entity.NewJournalEntry(actor, entity.JournalTypeCreate, activity, now)
	if err != nil {
		return nil, err
	}
	lead.Journal = append(lead.Journal, created)
	lead.RefreshProjection()
	lead.ID = uuid.NewString()

	err = uc.Guard.Do(ctx, "lead.create", func(ctx context.Context) error {
		id, err := uc.Store.Create(ctx, lead)
		if err != nil {
			return err
		}
		lead.ID = id
		return nil
	})
	if err != nil {
		uc.Logger.Error("lead create failed", "error", err)
		return nil, storeError(err, "Failed to create lead.")
	}

	uc.Logger.Info("lead created", "lead_id", lead.ID, "assigned_agent_id", lead.AssignedAgentID)
	if agent != nil {
		uc.Notifier.Notify(ctx, lead, agent, actor, false)
	}
	return lead, nil
}

// findAgent loads a user and requires the agent role.
func findAgent(ctx context.Context, guard StoreGuard, users entity.UserRepositoryInterface, id string) (*entity.User, error) {
	var user *entity.User
	err := guard.Do(ctx, "user.find", func(ctx context.Context) error {
		var err error
		user, err = users.FindByID(ctx, id)
		return err
	})
	if errors.Is(err, entity.ErrUserNotFound) {
		return nil, NewDomainError(CodeAgentNotFound, "Agent not found.")
	}
	if err != nil {
		return nil, storeError(err, "Failed to load agent.")
	}
	if user.Role != entity.RoleAgent {
		return nil, NewDomainError(CodeAgentNotFound, "Agent not found.")
	}
	return user, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
