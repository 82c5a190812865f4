package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/internal/infra/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAssignmentText(t *testing.T) {
	unassigned := &entity.Lead{}
	withAnn := &entity.Lead{AssignedAgentID: agentAnn.ID, AssignedAgentName: "Ann Agent"}
	emailOnly := &entity.Lead{AssignedAgentID: "x", AssignedAgentEmail: "x@example.com"}

	assert.Equal(t, "Admin assigned lead to Ann Agent.", AssignmentText(unassigned, &agentAnn, false))
	assert.Equal(t, "Admin reassigned lead from Ann Agent to bob@example.com.", AssignmentText(withAnn, &agentBob, false))
	assert.Equal(t, "Admin updated assignment for Ann Agent.", AssignmentText(withAnn, &agentAnn, false))
	assert.Equal(t, "Admin reassigned lead from x@example.com to Ann Agent.", AssignmentText(emailOnly, &agentAnn, false))

	assert.Equal(t, "Admin bulk assigned lead to Ann Agent.", AssignmentText(unassigned, &agentAnn, true))
	assert.Equal(t, "Admin bulk reassigned lead from Ann Agent to bob@example.com.", AssignmentText(withAnn, &agentBob, true))
	assert.Equal(t, "Admin bulk confirmed assignment for Ann Agent.", AssignmentText(withAnn, &agentAnn, true))
}

func TestAssignLead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.seed(&entity.Lead{FirstName: "Lee", LastName: "Buyer"})

	q := new(MockQueueProducer)
	q.On("PublishAssignment", mock.Anything, mock.MatchedBy(func(p queue.AssignmentPayload) bool {
		return p.LeadID == id && p.AgentEmail == "ann@example.com" && p.LeadName == "Lee Buyer" && !p.Bulk
	})).Return(nil).Once()

	uc := NewAssignLeadUseCase(f.journal, f.users, NewAssignmentNotifier(q, testLogger()), testLogger())
	lead, err := uc.Execute(ctx, adminActor, id, agentAnn.ID)
	require.NoError(t, err)

	assert.Equal(t, agentAnn.ID, lead.AssignedAgentID)
	assert.Equal(t, "Ann Agent", lead.AssignedAgentName)
	assert.Equal(t, "ann@example.com", lead.AssignedAgentEmail)
	assert.Equal(t, "Admin assigned lead to Ann Agent.", lead.LatestActivity)
	require.Len(t, lead.Journal, 1)
	assert.Equal(t, entity.JournalTypeAssignment, lead.Journal[0].Type)
	q.AssertExpectations(t)
}

func TestAssignLeadPublishFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	id := f.seed(&entity.Lead{})

	q := new(MockQueueProducer)
	q.On("PublishAssignment", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	uc := NewAssignLeadUseCase(f.journal, f.users, NewAssignmentNotifier(q, testLogger()), testLogger())
	_, err := uc.Execute(context.Background(), adminActor, id, agentBob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", f.get(id).AssignedAgentName)
}

func TestAssignLeadRejectsNonAgents(t *testing.T) {
	f := newFixture()
	id := f.seed(&entity.Lead{})
	uc := NewAssignLeadUseCase(f.journal, f.users, nil, testLogger())

	for _, agentID := range []string{"ghost", adminUser.ID} {
		_, err := uc.Execute(context.Background(), adminActor, id, agentID)
		var de *DomainError
		require.True(t, errors.As(err, &de), agentID)
		assert.Equal(t, CodeAgentNotFound, de.Code)
	}
	assert.Empty(t, f.get(id).Journal)

	_, err := uc.Execute(context.Background(), agentAnn.Actor(), id, agentAnn.ID)
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodePermissionDenied, de.Code)
}

func TestAssignLeadUserLookupFailure(t *testing.T) {
	f := newFixture()
	id := f.seed(&entity.Lead{})
	users := new(MockUserRepository)
	users.On("FindByID", mock.Anything, agentAnn.ID).Return(nil, errors.New("db down"))

	uc := NewAssignLeadUseCase(f.journal, users, nil, testLogger())
	_, err := uc.Execute(context.Background(), adminActor, id, agentAnn.ID)
	assert.True(t, IsTechnicalError(err))
}

func TestCreateLead(t *testing.T) {
	f := newFixture()
	q := new(MockQueueProducer)
	q.On("PublishAssignment", mock.Anything, mock.Anything).Return(nil).Once()

	uc := NewCreateLeadUseCase(f.store, f.users, f.guard, NewAssignmentNotifier(q, testLogger()), testLogger())
	uc.Now = fixedClock()

	lead, err := uc.Execute(context.Background(), adminActor, CreateLeadInput{
		FirstName:        "Lee",
		Phone:            "610-555-0000",
		Email:            "lee@example.com",
		FirstAttemptDate: "2025-06-02",
		AssignedAgentID:  agentAnn.ID,
		Note:             "met at open house",
	})
	require.NoError(t, err)
	require.NotEmpty(t, lead.ID)

	stored := f.get(lead.ID)
	assert.Equal(t, entity.StatusEngagement, stored.Status)
	assert.Equal(t, entity.LeadTypeBuyer, stored.LeadType)
	assert.Equal(t, entity.Relationship0, stored.RelationshipRanking)
	assert.Equal(t, entity.UrgencyUnsure, stored.UrgencyRanking)
	assert.Equal(t, entity.SourceImportCSV, stored.Source)
	assert.Equal(t, "610-555-0000 • lee@example.com", stored.Contact)
	assert.Equal(t, "2025-06-02", stored.FirstAttemptDate.DateString())
	assert.Equal(t, "Ann Agent", stored.AssignedAgentName)

	require.Len(t, stored.Journal, 2)
	assert.Equal(t, `Admin added note: "met at open house"`, stored.Journal[0].Text)
	assert.Equal(t, entity.JournalTypeAdminNote, stored.Journal[0].Type)
	assert.Equal(t, "Lead created by admin. Assigned to Ann Agent.", stored.LatestActivity)
	assert.False(t, stored.ProjectionStale())
	q.AssertExpectations(t)
}

func TestCreateLeadRetryKeepsOneLead(t *testing.T) {
	f := newFixture()
	store := &lostAckStore{LeadStore: f.store}
	uc := NewCreateLeadUseCase(store, f.users, f.guard, nil, testLogger())
	uc.Now = fixedClock()

	lead, err := uc.Execute(context.Background(), adminActor, CreateLeadInput{
		FirstName: "Lee",
		Phone:     "610-555-0000",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, store.createCalls)

	leads, err := f.store.List(context.Background(), entity.LeadQuery{})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, lead.ID, leads[0].ID)
}

func TestCreateLeadValidation(t *testing.T) {
	f := newFixture()
	uc := NewCreateLeadUseCase(f.store, f.users, f.guard, nil, testLogger())

	_, err := uc.Execute(context.Background(), adminActor, CreateLeadInput{Email: "not-an-email", Status: "cold"})
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeValidation, de.Code)
	assert.Contains(t, de.Message, "email: is invalid")
	assert.Contains(t, de.Message, "status:")

	leads, _ := f.store.List(context.Background(), entity.LeadQuery{})
	assert.Empty(t, leads)
}
