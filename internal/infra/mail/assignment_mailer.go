package mail

import (
	"context"
	"strings"

	"github.com/kdacanay/wrc-leads/internal/infra/queue"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

type assignmentSender interface {
	SendAssignment(to string, data AssignmentEmailData) error
}

// AssignmentMailer emails an agent when a lead is assigned to them. It is
// the notifier behind the assignment queue worker.
type AssignmentMailer struct {
	Sender  assignmentSender
	BaseURL string
	Logger  *logging.Logger
}

func NewAssignmentMailer(sender assignmentSender, baseURL string, logger *logging.Logger) *AssignmentMailer {
	if logger == nil {
		logger = logging.Default()
	}
	return &AssignmentMailer{Sender: sender, BaseURL: strings.TrimRight(baseURL, "/"), Logger: logger}
}

// LeadURL is the agent-facing page for a lead.
func (m *AssignmentMailer) LeadURL(leadID string) string {
	return m.BaseURL + "/agent/" + leadID
}

func (m *AssignmentMailer) NotifyAssignment(ctx context.Context, p queue.AssignmentPayload) error {
	if strings.TrimSpace(p.AgentEmail) == "" {
		m.Logger.Warn("assignment email skipped, agent has no email", "lead_id", p.LeadID, "agent_id", p.AgentID)
		return nil
	}

	leadName := strings.TrimSpace(p.LeadName)
	if leadName == "" {
		leadName = "a new lead"
	}
	agentName := p.AgentName
	if agentName == "" {
		agentName = p.AgentEmail
	}

	err := m.Sender.SendAssignment(p.AgentEmail, AssignmentEmailData{
		AgentName: agentName,
		LeadName:  leadName,
		LeadURL:   m.LeadURL(p.LeadID),
		Bulk:      p.Bulk,
	})
	if err != nil {
		return err
	}
	m.Logger.Info("assignment email sent", "lead_id", p.LeadID, "agent_id", p.AgentID)
	return nil
}
