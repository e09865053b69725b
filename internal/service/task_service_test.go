package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptohustle/internal/domain"
)

type fakeTaskRepo struct {
	domain.TaskRepository

	tasks     map[uuid.UUID]*domain.Task
	userTasks map[uuid.UUID]*domain.UserTask
	claimed   []uuid.UUID
}

func newFakeTaskRepo(tasks ...*domain.Task) *fakeTaskRepo {
	repo := &fakeTaskRepo{
		tasks:     make(map[uuid.UUID]*domain.Task),
		userTasks: make(map[uuid.UUID]*domain.UserTask),
	}
	for _, task := range tasks {
		repo.tasks[task.ID] = task
	}
	return repo
}

func (f *fakeTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (f *fakeTaskRepo) ListAvailable(ctx context.Context) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range f.tasks {
		if task.Status == domain.TaskAvailable {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) GetUserTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.UserTask, error) {
	return f.userTasks[taskID], nil
}

func (f *fakeTaskRepo) ListUserTasks(ctx context.Context, userID uuid.UUID) ([]*domain.UserTask, error) {
	var out []*domain.UserTask
	for _, ut := range f.userTasks {
		out = append(out, ut)
	}
	return out, nil
}

func (f *fakeTaskRepo) UpsertUserTask(ctx context.Context, ut *domain.UserTask) error {
	f.userTasks[ut.TaskID] = ut
	return nil
}

func (f *fakeTaskRepo) ClaimReward(ctx context.Context, userID, taskID uuid.UUID, reward int64, now time.Time) error {
	ut := f.userTasks[taskID]
	if ut == nil {
		return domain.ErrTaskNotFound
	}
	if ut.Status != domain.TaskCompleted {
		return domain.ErrTaskNotCompleted
	}
	ut.Status = domain.TaskClaimed
	f.claimed = append(f.claimed, taskID)
	return nil
}

type fakeAggregates struct {
	domain.UserRepository
	agg domain.UserAggregates
}

func (f *fakeAggregates) GetAggregates(ctx context.Context, userID uuid.UUID) (domain.UserAggregates, error) {
	return f.agg, nil
}

func miningStreakTask(target int, reward int64) *domain.Task {
	return &domain.Task{
		ID:        uuid.New(),
		Title:     "Keep the fire burning",
		Type:      domain.TaskInGame,
		Reward:    reward,
		Status:    domain.TaskAvailable,
		Condition: &domain.TaskCondition{Type: domain.ConditionMiningStreak, Target: target},
	}
}

func linkTask(reward int64) *domain.Task {
	return &domain.Task{
		ID:     uuid.New(),
		Title:  "Join the channel",
		Type:   domain.TaskPartner,
		Reward: reward,
		Status: domain.TaskAvailable,
		Link:   "https://t.me/example",
	}
}

func TestListForUserEvaluatesConditions(t *testing.T) {
	met := miningStreakTask(3, 500)
	notMet := miningStreakTask(30, 5000)
	repo := newFakeTaskRepo(met, notMet)
	users := &fakeAggregates{agg: domain.UserAggregates{MiningStreak: 5}}

	svc := NewTaskService(repo, users)
	views, err := svc.ListForUser(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, views, 2)

	byID := make(map[uuid.UUID]*TaskView)
	for _, v := range views {
		byID[v.Task.ID] = v
	}
	assert.Equal(t, domain.TaskCompleted, byID[met.ID].UserStatus)
	assert.Equal(t, domain.TaskAvailable, byID[notMet.ID].UserStatus)
}

func TestListForUserSkipsExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	expired := linkTask(100)
	expired.Type = domain.TaskLimited
	expired.EndTime = &past

	repo := newFakeTaskRepo(expired, linkTask(200))
	svc := NewTaskService(repo, &fakeAggregates{})

	views, err := svc.ListForUser(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, int64(200), views[0].Task.Reward)
}

func TestClaimInGameTask(t *testing.T) {
	task := miningStreakTask(3, 500)
	repo := newFakeTaskRepo(task)
	users := &fakeAggregates{agg: domain.UserAggregates{MiningStreak: 7}}
	svc := NewTaskService(repo, users)
	userID := uuid.New()

	reward, err := svc.Claim(context.Background(), userID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), reward)
	assert.Equal(t, []uuid.UUID{task.ID}, repo.claimed)

	// claiming again must reject: the instance is already claimed
	_, err = svc.Claim(context.Background(), userID, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotCompleted)
}

func TestClaimInGameTaskConditionNotMet(t *testing.T) {
	task := miningStreakTask(30, 5000)
	repo := newFakeTaskRepo(task)
	users := &fakeAggregates{agg: domain.UserAggregates{MiningStreak: 7}}
	svc := NewTaskService(repo, users)

	_, err := svc.Claim(context.Background(), uuid.New(), task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotCompleted)
	assert.Empty(t, repo.claimed)
}

func TestLinkTaskLifecycle(t *testing.T) {
	task := linkTask(300)
	repo := newFakeTaskRepo(task)
	svc := NewTaskService(repo, &fakeAggregates{})
	userID := uuid.New()

	// claim before completing: rejected
	_, err := svc.Claim(context.Background(), userID, task.ID)
	assert.Error(t, err)

	require.NoError(t, svc.Start(context.Background(), userID, task.ID))
	// starting twice is idempotent
	require.NoError(t, svc.Start(context.Background(), userID, task.ID))

	require.NoError(t, svc.Complete(context.Background(), userID, task.ID))

	reward, err := svc.Claim(context.Background(), userID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), reward)
}

func TestClaimUnknownTask(t *testing.T) {
	svc := NewTaskService(newFakeTaskRepo(), &fakeAggregates{})
	_, err := svc.Claim(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
