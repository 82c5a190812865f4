package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/internal/infra/memory"
	"github.com/kdacanay/wrc-leads/internal/infra/queue"
	"github.com/kdacanay/wrc-leads/pkg/logging"
	"github.com/stretchr/testify/mock"
)

var (
	adminActor = entity.Actor{ID: "admin-1", Email: "admin@example.com", Role: entity.RoleAdmin}
	agentAnn   = entity.User{ID: "agent-ann", FullName: "Ann Agent", Email: "ann@example.com", Role: entity.RoleAgent}
	agentBob   = entity.User{ID: "agent-bob", FullName: "", Email: "bob@example.com", Role: entity.RoleAgent}
	adminUser  = entity.User{ID: "admin-1", FullName: "Ada Admin", Email: "admin@example.com", Role: entity.RoleAdmin}
)

func testLogger() *logging.Logger {
	return logging.NewWithWriter(io.Discard, "debug")
}

// fixedClock returns increasing instants one millisecond apart.
func fixedClock() Clock {
	var mu sync.Mutex
	t := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

type fixture struct {
	store   *memory.LeadStore
	users   *memory.UserRepo
	guard   StoreGuard
	journal *JournalService
}

func newFixture() *fixture {
	store := memory.NewLeadStore()
	users := memory.NewUserRepo(agentAnn, agentBob, adminUser)
	guard := NewStoreGuard(time.Second, testLogger())
	journal := NewJournalService(store, guard, nil, testLogger())
	journal.Now = fixedClock()
	return &fixture{store: store, users: users, guard: guard, journal: journal}
}

func (f *fixture) seed(lead *entity.Lead) string {
	id, err := f.store.Create(context.Background(), lead)
	if err != nil {
		panic(err)
	}
	return id
}

func (f *fixture) get(id string) *entity.Lead {
	lead, err := f.store.Get(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return lead
}

type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishAssignment(ctx context.Context, payload queue.AssignmentPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListAgents(ctx context.Context) ([]*entity.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) DeleteIdentity(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

// recordingStore wraps the memory store to observe batch sizes and inject
// commit or create failures.
type recordingStore struct {
	*memory.LeadStore
	mu          sync.Mutex
	batchSizes  []int
	failCommitN int // fail the Nth commit (1-based); 0 never fails
	failCreate  func(lead *entity.Lead) bool
}

func (r *recordingStore) Commit(ctx context.Context, batch *entity.WriteBatch) error {
	r.mu.Lock()
	r.batchSizes = append(r.batchSizes, batch.Len())
	n := len(r.batchSizes)
	r.mu.Unlock()
	if r.failCommitN > 0 && n == r.failCommitN {
		return errBoom
	}
	return r.LeadStore.Commit(ctx, batch)
}

func (r *recordingStore) Create(ctx context.Context, lead *entity.Lead) (string, error) {
	if r.failCreate != nil && r.failCreate(lead) {
		return "", errBoom
	}
	return r.LeadStore.Create(ctx, lead)
}

// lostAckStore commits the first write of each kind and then reports a
// timeout, as a driver does when the reply is lost after the commit.
type lostAckStore struct {
	*memory.LeadStore
	mu          sync.Mutex
	createCalls int
	deleteCalls int
}

func (s *lostAckStore) Create(ctx context.Context, lead *entity.Lead) (string, error) {
	s.mu.Lock()
	s.createCalls++
	n := s.createCalls
	s.mu.Unlock()
	id, err := s.LeadStore.Create(ctx, lead)
	if err == nil && n == 1 {
		return "", context.DeadlineExceeded
	}
	return id, err
}

func (s *lostAckStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.deleteCalls++
	n := s.deleteCalls
	s.mu.Unlock()
	err := s.LeadStore.Delete(ctx, id)
	if err == nil && n == 1 {
		return context.DeadlineExceeded
	}
	return err
}

type boomError struct{}

func (boomError) Error() string { return "boom" }

var errBoom error = boomError{}
