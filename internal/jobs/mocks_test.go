package jobs

import (
	"context"
	"database/sql"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/models"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/transfer"
)

type mockScheduledPostRepo struct {
	mock.Mock
}

func (m *mockScheduledPostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.ScheduledPost) (int64, error) {
	args := m.Called(ctx, tx, post)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockScheduledPostRepo) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduledPost), args.Error(1)
}

func (m *mockScheduledPostRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScheduledPost), args.Error(1)
}

func (m *mockScheduledPostRepo) ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScheduledPost), args.Error(1)
}

func (m *mockScheduledPostRepo) UpdateMedia(ctx context.Context, post *models.ScheduledPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockScheduledPostRepo) Finalize(ctx context.Context, id int64, status, platformPostID string, executedAt time.Time) error {
	args := m.Called(ctx, id, status, platformPostID, executedAt)
	return args.Error(0)
}

func (m *mockScheduledPostRepo) DeactivateActive(ctx context.Context, tx *sql.Tx, userID, socialAccountID int64) error {
	args := m.Called(ctx, tx, userID, socialAccountID)
	return args.Error(0)
}

func (m *mockScheduledPostRepo) Deactivate(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type mockBulkComposerRepo struct {
	mock.Mock
}

func (m *mockBulkComposerRepo) Create(ctx context.Context, tx *sql.Tx, content *models.BulkComposerContent) (int64, error) {
	args := m.Called(ctx, tx, content)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBulkComposerRepo) GetByID(ctx context.Context, id int64) (*models.BulkComposerContent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BulkComposerContent), args.Error(1)
}

func (m *mockBulkComposerRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.BulkComposerContent, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BulkComposerContent), args.Error(1)
}

func (m *mockBulkComposerRepo) ListDue(ctx context.Context, now time.Time) ([]*models.BulkComposerContent, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BulkComposerContent), args.Error(1)
}

func (m *mockBulkComposerRepo) ListRetryable(ctx context.Context, userID int64) ([]*models.BulkComposerContent, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BulkComposerContent), args.Error(1)
}

func (m *mockBulkComposerRepo) MarkAttempt(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockBulkComposerRepo) MarkPublished(ctx context.Context, id int64, platformPostID string) error {
	args := m.Called(ctx, id, platformPostID)
	return args.Error(0)
}

func (m *mockBulkComposerRepo) MarkFailed(ctx context.Context, id int64, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

func (m *mockBulkComposerRepo) ResetToScheduled(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockAutomationRuleRepo struct {
	mock.Mock
}

func (m *mockAutomationRuleRepo) Upsert(ctx context.Context, rule *models.AutomationRule) (int64, error) {
	args := m.Called(ctx, rule)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAutomationRuleRepo) GetByAccount(ctx context.Context, userID, socialAccountID int64, ruleType string) (*models.AutomationRule, error) {
	args := m.Called(ctx, userID, socialAccountID, ruleType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AutomationRule), args.Error(1)
}

func (m *mockAutomationRuleRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.AutomationRule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AutomationRule), args.Error(1)
}

func (m *mockAutomationRuleRepo) ListActiveByType(ctx context.Context, ruleType string) ([]*models.AutomationRule, error) {
	args := m.Called(ctx, ruleType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AutomationRule), args.Error(1)
}

func (m *mockAutomationRuleRepo) SetLastExecution(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockAutomationRuleRepo) RecordSuccess(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockAutomationRuleRepo) RecordError(ctx context.Context, id int64, at time.Time, message string) error {
	args := m.Called(ctx, id, at, message)
	return args.Error(0)
}

type mockSocialAccountRepo struct {
	mock.Mock
}

func (m *mockSocialAccountRepo) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SocialAccount), args.Error(1)
}

func (m *mockSocialAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SocialAccount), args.Error(1)
}

func (m *mockSocialAccountRepo) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.SocialAccount, error) {
	args := m.Called(ctx, initialTime, finalTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SocialAccount), args.Error(1)
}

func (m *mockSocialAccountRepo) SetToken(ctx context.Context, id int64, accessToken string, expiresAt time.Time) error {
	args := m.Called(ctx, id, accessToken, expiresAt)
	return args.Error(0)
}

func (m *mockSocialAccountRepo) SetConnected(ctx context.Context, id int64, connected bool) error {
	args := m.Called(ctx, id, connected)
	return args.Error(0)
}

type mockInstagramService struct {
	mock.Mock
}

func (m *mockInstagramService) CreatePost(ctx context.Context, igUserID, accessToken, caption, imageURL string) (*transfer.PostResult, error) {
	args := m.Called(ctx, igUserID, accessToken, caption, imageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.PostResult), args.Error(1)
}

func (m *mockInstagramService) CreateCarouselPost(ctx context.Context, igUserID, accessToken, caption string, imageURLs []string) (*transfer.PostResult, error) {
	args := m.Called(ctx, igUserID, accessToken, caption, imageURLs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.PostResult), args.Error(1)
}

func (m *mockInstagramService) CreateReelPost(ctx context.Context, igUserID, accessToken, caption, videoURL string) (*transfer.PostResult, error) {
	args := m.Called(ctx, igUserID, accessToken, caption, videoURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.PostResult), args.Error(1)
}

func (m *mockInstagramService) GetComments(ctx context.Context, mediaID, accessToken string, limit int) ([]transfer.Comment, error) {
	args := m.Called(ctx, mediaID, accessToken, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transfer.Comment), args.Error(1)
}

func (m *mockInstagramService) PostComment(ctx context.Context, mediaID, accessToken, text, parentCommentID string) (*transfer.PostResult, error) {
	args := m.Called(ctx, mediaID, accessToken, text, parentCommentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.PostResult), args.Error(1)
}

func (m *mockInstagramService) RefreshToken(ctx context.Context, accessToken string) (string, time.Time, error) {
	args := m.Called(ctx, accessToken)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type mockFacebookService struct {
	mock.Mock
}

func (m *mockFacebookService) PostText(ctx context.Context, pageID, accessToken, message string) (*transfer.PostResult, error) {
	args := m.Called(ctx, pageID, accessToken, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.PostResult), args.Error(1)
}

func (m *mockFacebookService) PostPhoto(ctx context.Context, pageID, accessToken, message, imageURL string) (*transfer.PostResult, error) {
	args := m.Called(ctx, pageID, accessToken, message, imageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.PostResult), args.Error(1)
}

func (m *mockFacebookService) GetComments(ctx context.Context, postID, accessToken string, limit int) ([]transfer.Comment, error) {
	args := m.Called(ctx, postID, accessToken, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transfer.Comment), args.Error(1)
}

func (m *mockFacebookService) PostCommentReply(ctx context.Context, commentID, accessToken, text string) (*transfer.PostResult, error) {
	args := m.Called(ctx, commentID, accessToken, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.PostResult), args.Error(1)
}

type mockGroqService struct {
	mock.Mock
}

func (m *mockGroqService) GenerateCaption(ctx context.Context, prompt string, maxLength int) *transfer.GenerationResult {
	args := m.Called(ctx, prompt, maxLength)
	return args.Get(0).(*transfer.GenerationResult)
}

func (m *mockGroqService) GenerateAutoReply(ctx context.Context, originalComment, commentContext string) *transfer.GenerationResult {
	args := m.Called(ctx, originalComment, commentContext)
	return args.Get(0).(*transfer.GenerationResult)
}

type mockStabilityService struct {
	mock.Mock
}

func (m *mockStabilityService) GenerateImage(ctx context.Context, prompt, sizingProfile string) *transfer.ImageResult {
	args := m.Called(ctx, prompt, sizingProfile)
	return args.Get(0).(*transfer.ImageResult)
}

type mockR2Service struct {
	mock.Mock
}

func (m *mockR2Service) UploadImage(ctx context.Context, data []byte, folder string) (string, error) {
	args := m.Called(ctx, data, folder)
	return args.String(0), args.Error(1)
}
