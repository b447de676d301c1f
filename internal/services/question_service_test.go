package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/prepflow/practice-service/internal/cache"
	"github.com/prepflow/practice-service/internal/content"
	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/repositories"
	"github.com/prepflow/practice-service/internal/utils"
)

// memoryCache is an in-process CacheService for tests. Invalidation runs on a
// timer goroutine, so access is locked.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = data
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	c.entries = make(map[string][]byte)
	c.deletes++
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *memoryCache) deleteCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deletes
}

func validSingleQuestion(t *testing.T) *models.Question {
	t.Helper()
	q := &models.Question{
		Kind:       models.KindSingle,
		Type:       models.ProblemSolving,
		Difficulty: 3,
	}
	require.NoError(t, q.SetContent([]content.Block{{Kind: content.KindParagraph, Text: "If x > 2..."}}))
	require.NoError(t, q.SetOptions([]models.Option{
		{ID: "A", Blocks: []content.Block{{Kind: content.KindParagraph, Text: "4"}}},
		{ID: "B", Blocks: []content.Block{{Kind: content.KindParagraph, Text: "6"}}},
	}))
	require.NoError(t, q.SetKey(models.AnswerKey{CorrectOptionID: strPtr("B")}))
	return q
}

func newQuestionService(repo *MockRepository, c cache.CacheService) QuestionService {
	return NewQuestionService(repo, c, utils.NewDevelopmentLogger(), utils.NewValidator())
}

func TestQuestionService_GetByID(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo, newMemoryCache())

	question := validSingleQuestion(t)
	question.ID = 7
	repo.questionRepo.On("GetByID", mock.Anything, uint(7)).Return(question, nil)
	repo.questionRepo.On("GetByID", mock.Anything, uint(8)).Return(nil, gorm.ErrRecordNotFound)

	got, err := svc.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), got.ID)

	_, err = svc.GetByID(context.Background(), 8)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestQuestionService_GetRendered_CompositeWithTabbedPassage(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo, newMemoryCache())

	q := &models.Question{
		Kind:       models.KindComposite,
		Type:       models.MultiSourceReasoning,
		Difficulty: 5,
	}
	q.ID = 12
	passage, err := json.Marshal([]content.Block{
		{Kind: content.KindParagraph, Text: "Email from the manager.", TabIndex: 0},
		{Kind: content.KindTable, Headers: []string{"Route"}, Rows: [][]string{{"A"}}, TabIndex: 1},
	})
	require.NoError(t, err)
	q.Passage = passage

	sub := validSingleQuestion(t)
	sub.Type = models.MultiSourceReasoning
	q.SubQuestions = []models.Question{*sub}

	repo.questionRepo.On("GetByID", mock.Anything, uint(12)).Return(q, nil)

	rendered, err := svc.GetRendered(context.Background(), 12)
	require.NoError(t, err)

	assert.Equal(t, uint(12), rendered.ID)
	assert.True(t, rendered.Tabbed)
	require.Len(t, rendered.Sources, 2)
	assert.Equal(t, "paragraph", rendered.Sources[0].Nodes[0].Type)
	assert.Equal(t, "table", rendered.Sources[1].Nodes[0].Type)

	require.Len(t, rendered.SubQuestions, 1)
	subView := rendered.SubQuestions[0]
	require.Len(t, subView.Options, 2)
	assert.Equal(t, "A", subView.Options[0].ID)
	assert.Equal(t, "4", subView.Options[0].Nodes[0].Text)
}

func TestQuestionService_GetRendered_SingleSourceNotTabbed(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo, newMemoryCache())

	q := validSingleQuestion(t)
	q.ID = 3
	repo.questionRepo.On("GetByID", mock.Anything, uint(3)).Return(q, nil)

	rendered, err := svc.GetRendered(context.Background(), 3)
	require.NoError(t, err)

	assert.False(t, rendered.Tabbed)
	assert.Empty(t, rendered.Sources)
	require.Len(t, rendered.Content, 1)
	assert.Equal(t, "paragraph", rendered.Content[0].Type)
}

func TestQuestionService_GetRendered_NotFound(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo, newMemoryCache())

	repo.questionRepo.On("GetByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetRendered(context.Background(), 99)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestQuestionService_List_CachesSecondRead(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo, newMemoryCache())

	filters := repositories.QuestionFilters{Page: 1, PageSize: 20}
	summaries := []*models.QuestionSummary{
		{ID: 1, Kind: models.KindSingle, Type: models.ProblemSolving, Difficulty: 3},
	}

	// The repository must be hit exactly once; the second read is served from
	// cache.
	repo.questionRepo.On("List", mock.Anything, "u1", filters).Return(summaries, int64(1), nil).Once()

	for i := 0; i < 2; i++ {
		got, total, err := svc.List(context.Background(), "u1", filters)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, got, 1)
		assert.Equal(t, uint(1), got[0].ID)
	}
	repo.questionRepo.AssertExpectations(t)
}

func TestQuestionService_List_DistinctUsersDistinctEntries(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo, newMemoryCache())

	filters := repositories.QuestionFilters{Page: 1, PageSize: 20}
	repo.questionRepo.On("List", mock.Anything, "u1", filters).
		Return([]*models.QuestionSummary{}, int64(0), nil).Once()
	repo.questionRepo.On("List", mock.Anything, "u2", filters).
		Return([]*models.QuestionSummary{}, int64(0), nil).Once()

	_, _, err := svc.List(context.Background(), "u1", filters)
	require.NoError(t, err)
	_, _, err = svc.List(context.Background(), "u2", filters)
	require.NoError(t, err)
	repo.questionRepo.AssertExpectations(t)
}

func TestQuestionService_List_InvalidProgressFilter(t *testing.T) {
	svc := newQuestionService(newMockRepository(), newMemoryCache())

	_, _, err := svc.List(context.Background(), "u1", repositories.QuestionFilters{
		ProgressFilter: "bogus",
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestQuestionService_Create_InvalidatesSummaryCache(t *testing.T) {
	repo := newMockRepository()
	mem := newMemoryCache()
	svc := newQuestionService(repo, mem)

	filters := repositories.QuestionFilters{Page: 1}
	repo.questionRepo.On("List", mock.Anything, "u1", filters).
		Return([]*models.QuestionSummary{}, int64(0), nil).Twice()
	repo.questionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, _, err := svc.List(context.Background(), "u1", filters)
	require.NoError(t, err)

	require.NoError(t, svc.Create(context.Background(), validSingleQuestion(t)))

	// Invalidation is debounced; wait for the pattern delete to land.
	require.Eventually(t, func() bool {
		return mem.size() == 0
	}, time.Second, 10*time.Millisecond)

	// After the write, the listing is recomputed.
	_, _, err = svc.List(context.Background(), "u1", filters)
	require.NoError(t, err)
	repo.questionRepo.AssertExpectations(t)
}

func TestQuestionService_Create_BurstCoalescesInvalidation(t *testing.T) {
	repo := newMockRepository()
	mem := newMemoryCache()
	svc := newQuestionService(repo, mem)

	repo.questionRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Times(3)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Create(context.Background(), validSingleQuestion(t)))
	}

	require.Eventually(t, func() bool {
		return mem.deleteCount() >= 1
	}, time.Second, 10*time.Millisecond)

	// The quiet window has elapsed; the burst must have produced one delete.
	time.Sleep(2 * summaryInvalidateWindow)
	assert.Equal(t, 1, mem.deleteCount())
}

func TestQuestionService_Create_RejectsBadContent(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo, newMemoryCache())

	tests := []struct {
		name   string
		mutate func(q *models.Question)
	}{
		{"single option", func(q *models.Question) {
			require.NoError(t, q.SetOptions([]models.Option{{ID: "A"}}))
		}},
		{"correct id not in options", func(q *models.Question) {
			require.NoError(t, q.SetKey(models.AnswerKey{CorrectOptionID: strPtr("Z")}))
		}},
		{"missing answer key", func(q *models.Question) {
			q.AnswerKey = nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validSingleQuestion(t)
			tt.mutate(q)

			err := svc.Create(context.Background(), q)
			assert.ErrorIs(t, err, ErrQuestionInvalidContent)
		})
	}
	repo.questionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestQuestionService_Create_NumbersSubQuestions(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo, newMemoryCache())

	q := &models.Question{
		Kind:       models.KindComposite,
		Type:       models.ReadingComprehension,
		Difficulty: 4,
	}
	passage, err := json.Marshal([]content.Block{{Kind: content.KindParagraph, Text: "The passage."}})
	require.NoError(t, err)
	q.Passage = passage

	sub1 := validSingleQuestion(t)
	sub1.Type = models.ReadingComprehension
	sub2 := validSingleQuestion(t)
	sub2.Type = models.ReadingComprehension
	// Deliberately wrong incoming index; the service renumbers.
	sub2.SubIndex = 9
	q.SubQuestions = []models.Question{*sub1, *sub2}

	repo.questionRepo.On("Create", mock.Anything, mock.MatchedBy(func(created *models.Question) bool {
		return created.SubQuestions[0].SubIndex == 0 &&
			created.SubQuestions[1].SubIndex == 1 &&
			created.SubQuestions[1].Kind == models.KindSingle
	})).Return(nil)

	require.NoError(t, svc.Create(context.Background(), q))
	repo.questionRepo.AssertExpectations(t)
}
