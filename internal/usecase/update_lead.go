package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

type UpdateLeadUseCase struct {
	Journal *JournalService
	Logger  *logging.Logger
}

func NewUpdateLeadUseCase(journal *JournalService, logger *logging.Logger) *UpdateLeadUseCase {
	if logger == nil {
		logger = logging.Default()
	}
	return &UpdateLeadUseCase{Journal: journal, Logger: logger}
}

// AdminUpdate applies an admin edit and journals a summary of what changed.
func (uc *UpdateLeadUseCase) AdminUpdate(ctx context.Context, actor entity.Actor, leadID string, input AdminUpdateInput) (*entity.Lead, error) {
	if !actor.IsAdmin() {
		return nil, NewDomainError(CodePermissionDenied, "Only admins can edit lead details.")
	}
	if err := validationFailure(ValidateAdminUpdateInput(input)); err != nil {
		return nil, err
	}

	lead, err := uc.Journal.loadForActor(ctx, leadID, actor)
	if err != nil {
		return nil, err
	}

	patch := entity.LeadPatch{
		FirstName:          trimmedPtr(input.FirstName),
		LastName:           trimmedPtr(input.LastName),
		Phone:              trimmedPtr(input.Phone),
		Email:              trimmedPtr(input.Email),
		Source:             trimmedPtr(input.Source),
		ActionItem:         trimmedPtr(input.ActionItem),
		FirstAttemptDate:   parseDatePtr(input.FirstAttemptDate),
		NextEvaluationDate: parseDatePtr(input.NextEvaluationDate),
	}
	if input.Status != nil {
		v := entity.LeadStatus(*input.Status)
		patch.Status = &v
	}
	if input.LeadType != nil {
		v := entity.LeadType(*input.LeadType)
		patch.LeadType = &v
	}
	if input.RelationshipRanking != nil {
		v := entity.RelationshipRanking(*input.RelationshipRanking)
		patch.RelationshipRanking = &v
	}
	if input.UrgencyRanking != nil {
		v := entity.UrgencyRanking(*input.UrgencyRanking)
		patch.UrgencyRanking = &v
	}
	if input.RegisteredDate != nil {
		raw := strings.TrimSpace(*input.RegisteredDate)
		patch.RegisteredDateRaw = &raw
		// Unparseable registration dates stay raw for manual correction.
		ts, _ := entity.ParseTimestamp(raw)
		patch.RegistrationDate = &ts
	}

	text := summarize("Admin", lead, patch, adminWatchedFields, input.Note)
	if _, err := uc.Journal.Mutate(ctx, leadID, actor, patch, entity.JournalTypeAdminUpdate, text); err != nil {
		return nil, err
	}
	return uc.Journal.loadForActor(ctx, leadID, actor)
}

// AgentUpdate applies the assigned agent's edit to scheduling and ranking.
func (uc *UpdateLeadUseCase) AgentUpdate(ctx context.Context, actor entity.Actor, leadID string, input AgentUpdateInput) (*entity.Lead, error) {
	if !actor.IsAgent() {
		return nil, NewDomainError(CodePermissionDenied, "Only the assigned agent can use this form.")
	}
	if err := validationFailure(ValidateAgentUpdateInput(input)); err != nil {
		return nil, err
	}

	lead, err := uc.Journal.loadForActor(ctx, leadID, actor)
	if err != nil {
		return nil, err
	}

	patch := entity.LeadPatch{
		FirstAttemptDate:   parseDatePtr(input.FirstAttemptDate),
		NextEvaluationDate: parseDatePtr(input.NextEvaluationDate),
	}
	if input.RelationshipRanking != nil {
		v := entity.RelationshipRanking(*input.RelationshipRanking)
		patch.RelationshipRanking = &v
	}
	if input.UrgencyRanking != nil {
		v := entity.UrgencyRanking(*input.UrgencyRanking)
		patch.UrgencyRanking = &v
	}

	text := summarize("Agent", lead, patch, agentWatchedFields, input.Note)
	if _, err := uc.Journal.Mutate(ctx, leadID, actor, patch, entity.JournalTypeAgentUpdate, text); err != nil {
		return nil, err
	}
	return uc.Journal.loadForActor(ctx, leadID, actor)
}

// SaveActionItem sets or clears the admin instruction shown to the agent.
func (uc *UpdateLeadUseCase) SaveActionItem(ctx context.Context, actor entity.Actor, leadID, actionItem string) (*entity.Lead, error) {
	if !actor.IsAdmin() {
		return nil, NewDomainError(CodePermissionDenied, "Only admins can set action items.")
	}

	trimmed := strings.TrimSpace(actionItem)
	text := ActionItemText(trimmed)
	patch := entity.LeadPatch{ActionItem: &trimmed}
	if _, err := uc.Journal.Mutate(ctx, leadID, actor, patch, entity.JournalTypeActionItem, text); err != nil {
		return nil, err
	}
	return uc.Journal.loadForActor(ctx, leadID, actor)
}

func ActionItemText(trimmed string) string {
	if trimmed == "" {
		return "Admin cleared action item."
	}
	return fmt.Sprintf(`Admin updated action item: "%s"`, trimmed)
}

func summarize(actorLabel string, before *entity.Lead, patch entity.LeadPatch, fields []watchedField, note string) string {
	after := before.Clone()
	patch.ApplyTo(after)
	return ChangeSummary(actorLabel, describeChanges(before, after, fields), note)
}
