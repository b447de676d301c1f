package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/prepflow/practice-service/internal/events"
	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/repositories"
)

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) List(ctx context.Context, userID string, filters repositories.QuestionFilters) ([]*models.QuestionSummary, int64, error) {
	args := m.Called(ctx, userID, filters)
	return args.Get(0).([]*models.QuestionSummary), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionRepository) NextUnanswered(ctx context.Context, userID string) (*models.Question, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountByType(ctx context.Context) (map[models.QuestionType]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.QuestionType]int64), args.Error(1)
}

// MockSubmissionRepository is a mock implementation of SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetByUser(ctx context.Context, userID string, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	args := m.Called(ctx, userID, filters)
	return args.Get(0).([]*models.Submission), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubmissionRepository) HasSubmission(ctx context.Context, userID string, questionID uint) (bool, error) {
	args := m.Called(ctx, userID, questionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubmissionRepository) TypeProgress(ctx context.Context, userID string) ([]models.TypeProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TypeProgress), args.Error(1)
}

// MockChatRepository is a mock implementation of ChatRepository
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockChatRepository) GetRecent(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ChatMessage), args.Error(1)
}

// MockStudyPlanRepository is a mock implementation of StudyPlanRepository
type MockStudyPlanRepository struct {
	mock.Mock
}

func (m *MockStudyPlanRepository) Create(ctx context.Context, plan *models.StudyPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockStudyPlanRepository) GetLatest(ctx context.Context, userID string) (*models.StudyPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudyPlan), args.Error(1)
}

// MockPlanRepository is a mock implementation of PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) ListActive(ctx context.Context) ([]*models.Plan, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Plan), args.Error(1)
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id uint) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

// MockRepository bundles the repository mocks behind the Repository interface.
type MockRepository struct {
	questionRepo   *MockQuestionRepository
	submissionRepo *MockSubmissionRepository
	chatRepo       *MockChatRepository
	studyPlanRepo  *MockStudyPlanRepository
	planRepo       *MockPlanRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		questionRepo:   &MockQuestionRepository{},
		submissionRepo: &MockSubmissionRepository{},
		chatRepo:       &MockChatRepository{},
		studyPlanRepo:  &MockStudyPlanRepository{},
		planRepo:       &MockPlanRepository{},
	}
}

func (m *MockRepository) Question() repositories.QuestionRepository     { return m.questionRepo }
func (m *MockRepository) Submission() repositories.SubmissionRepository { return m.submissionRepo }
func (m *MockRepository) Chat() repositories.ChatRepository             { return m.chatRepo }
func (m *MockRepository) StudyPlan() repositories.StudyPlanRepository   { return m.studyPlanRepo }
func (m *MockRepository) Plan() repositories.PlanRepository             { return m.planRepo }
func (m *MockRepository) Ping(ctx context.Context) error                { return nil }
func (m *MockRepository) Close() error                                  { return nil }

// capturePublisher records published events for assertions.
type capturePublisher struct {
	events []*events.SubmissionEvent
}

func (p *capturePublisher) PublishSubmissionEvent(ctx context.Context, event *events.SubmissionEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }
