package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/internal/infra/queue"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

// AssignmentNotifier publishes assignment events. A nil notifier or a nil
// queue disables publishing; publish failures are logged, never returned.
type AssignmentNotifier struct {
	Queue  QueueProducerInterface
	Logger *logging.Logger
}

func NewAssignmentNotifier(q QueueProducerInterface, logger *logging.Logger) *AssignmentNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &AssignmentNotifier{Queue: q, Logger: logger}
}

func (n *AssignmentNotifier) Notify(ctx context.Context, lead *entity.Lead, agent *entity.User, actor entity.Actor, bulk bool) {
	if n == nil || n.Queue == nil {
		return
	}
	payload := queue.AssignmentPayload{
		LeadID:     lead.ID,
		LeadName:   lead.FullName(),
		AgentID:    agent.ID,
		AgentName:  agent.DisplayName(),
		AgentEmail: agent.Email,
		AssignedBy: actor.ID,
		Bulk:       bulk,
		AssignedAt: time.Now().UTC(),
	}
	if err := n.Queue.PublishAssignment(ctx, payload); err != nil {
		n.Logger.Warn("assignment notification not published", "lead_id", lead.ID, "agent_id", agent.ID, "error", err)
	}
}

// AssignmentText describes an assignment change relative to the lead's
// current assignee.
func AssignmentText(lead *entity.Lead, agent *entity.User, bulk bool) string {
	newName := agent.DisplayName()
	verb := "Admin"
	if bulk {
		verb = "Admin bulk"
	}
	switch {
	case !lead.IsAssigned():
		return fmt.Sprintf("%s assigned lead to %s.", verb, newName)
	case lead.AssignedAgentID != agent.ID:
		return fmt.Sprintf("%s reassigned lead from %s to %s.", verb, lead.AssigneeLabel(), newName)
	case bulk:
		return fmt.Sprintf("Admin bulk confirmed assignment for %s.", newName)
	default:
		return fmt.Sprintf("Admin updated assignment for %s.", newName)
	}
}

// assignmentPatch snapshots the agent's current name and email onto the lead.
func assignmentPatch(agent *entity.User) entity.LeadPatch {
	return entity.LeadPatch{
		AssignedAgentID:    entity.StringPtr(agent.ID),
		AssignedAgentName:  entity.StringPtr(agent.DisplayName()),
		AssignedAgentEmail: entity.StringPtr(agent.Email),
	}
}

type AssignLeadUseCase struct {
	Journal  *JournalService
	Users    entity.UserRepositoryInterface
	Notifier *AssignmentNotifier
	Logger   *logging.Logger
}

func NewAssignLeadUseCase(journal *JournalService, users entity.UserRepositoryInterface, notifier *AssignmentNotifier, logger *logging.Logger) *AssignLeadUseCase {
	if logger == nil {
		logger = logging.Default()
	}
	return &AssignLeadUseCase{Journal: journal, Users: users, Notifier: notifier, Logger: logger}
}

func (uc *AssignLeadUseCase) Execute(ctx context.Context, actor entity.Actor, leadID, agentID string) (*entity.Lead, error) {
	if !actor.IsAdmin() {
		return nil, NewDomainError(CodePermissionDenied, "Only admins can assign leads.")
	}
	if agentID == "" {
		return nil, NewDomainError(CodeValidation, "agentId: is required")
	}

	agent, err := findAgent(ctx, uc.Journal.Guard, uc.Users, agentID)
	if err != nil {
		return nil, err
	}
	lead, err := uc.Journal.loadForActor(ctx, leadID, actor)
	if err != nil {
		return nil, err
	}

	text := AssignmentText(lead, agent, false)
	if _, err := uc.Journal.Mutate(ctx, leadID, actor, assignmentPatch(agent), entity.JournalTypeAssignment, text); err != nil {
		return nil, err
	}

	uc.Logger.Info("lead assigned", "lead_id", leadID, "agent_id", agent.ID)
	uc.Notifier.Notify(ctx, lead, agent, actor, false)

	return uc.Journal.loadForActor(ctx, leadID, actor)
}
