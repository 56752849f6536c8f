package jobs

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	config "github.com/Lalfakawma-Vangchhia/dashboard-automation/configs"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/models"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/transfer"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/pkg/utils"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testConfig() config.Config {
	return config.Config{SecretKey: testSecret}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func encryptedToken(t *testing.T) string {
	t.Helper()
	token, err := utils.Encrypt("page-token", []byte(testSecret))
	require.NoError(t, err)
	return token
}

func connectedAccount(t *testing.T, id int64, platform string) *models.SocialAccount {
	t.Helper()
	return &models.SocialAccount{
		ID:             id,
		UserID:         1,
		Platform:       platform,
		PlatformUserID: "9001",
		AccessToken:    encryptedToken(t),
		IsConnected:    true,
	}
}

// newTestScheduledPostJob wires a caption generator that always fails, so the
// submitted caption is the stored prompt unless a test overrides it.
func newTestScheduledPostJob(sp *mockScheduledPostRepo, sa *mockSocialAccountRepo,
	ig *mockInstagramService, fb *mockFacebookService,
	stability *mockStabilityService, r2 *mockR2Service) *ScheduledPostJob {
	groq := new(mockGroqService)
	groq.On("GenerateCaption", mock.Anything, mock.Anything, mock.Anything).
		Return(&transfer.GenerationResult{Success: false, Error: "unavailable"}).Maybe()
	return NewScheduledPostJob(testConfig(), sp, sa, ig, fb, groq, stability, r2, nil, testLogger())
}

func TestProcessDuePostsIdleTick(t *testing.T) {
	sp := new(mockScheduledPostRepo)
	sa := new(mockSocialAccountRepo)
	ig := new(mockInstagramService)
	fb := new(mockFacebookService)
	stability := new(mockStabilityService)
	r2 := new(mockR2Service)

	sp.On("ListDue", mock.Anything, mock.Anything).Return([]*models.ScheduledPost{}, nil)

	job := newTestScheduledPostJob(sp, sa, ig, fb, stability, r2)
	job.ProcessDuePosts(context.Background())
	job.ProcessDuePosts(context.Background())

	sp.AssertExpectations(t)
	sp.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	sa.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestProcessDuePostsPhotoGeneratesUploadsAndPublishes(t *testing.T) {
	sp := new(mockScheduledPostRepo)
	sa := new(mockSocialAccountRepo)
	ig := new(mockInstagramService)
	fb := new(mockFacebookService)
	stability := new(mockStabilityService)
	r2 := new(mockR2Service)

	post := &models.ScheduledPost{
		ID:              7,
		UserID:          1,
		SocialAccountID: 3,
		Prompt:          "sunset over the lake",
		PostType:        models.PostTypePhoto,
		Status:          models.ScheduledPostStatusScheduled,
		IsActive:        true,
	}

	imageData := []byte("generated-image-bytes")
	sp.On("ListDue", mock.Anything, mock.Anything).Return([]*models.ScheduledPost{post}, nil)
	stability.On("GenerateImage", mock.Anything, post.Prompt, "feed").
		Return(&transfer.ImageResult{ImageBase64: base64.StdEncoding.EncodeToString(imageData), Success: true})
	r2.On("UploadImage", mock.Anything, imageData, "instagram").
		Return("https://cdn.example.com/instagram/abc.jpg", nil)
	sp.On("UpdateMedia", mock.Anything, post).Return(nil)
	sa.On("GetByID", mock.Anything, int64(3)).Return(connectedAccount(t, 3, models.PlatformInstagram), nil)
	ig.On("CreatePost", mock.Anything, "9001", "page-token", post.Prompt, "https://cdn.example.com/instagram/abc.jpg").
		Return(&transfer.PostResult{Success: true, PostID: "178001"}, nil)
	sp.On("Finalize", mock.Anything, int64(7), models.ScheduledPostStatusPosted, "178001", mock.Anything).Return(nil)

	job := newTestScheduledPostJob(sp, sa, ig, fb, stability, r2)
	job.ProcessDuePosts(context.Background())

	sp.AssertExpectations(t)
	stability.AssertExpectations(t)
	r2.AssertExpectations(t)
	ig.AssertExpectations(t)
}

func TestProcessDuePostsDisconnectedAccountLeavesPostUntouched(t *testing.T) {
	sp := new(mockScheduledPostRepo)
	sa := new(mockSocialAccountRepo)
	ig := new(mockInstagramService)
	fb := new(mockFacebookService)
	stability := new(mockStabilityService)
	r2 := new(mockR2Service)

	post := &models.ScheduledPost{
		ID:              8,
		SocialAccountID: 4,
		Prompt:          "caption",
		PostType:        models.PostTypePhoto,
		ImageURL:        "https://cdn.example.com/img.jpg",
	}
	account := connectedAccount(t, 4, models.PlatformInstagram)
	account.IsConnected = false

	sp.On("ListDue", mock.Anything, mock.Anything).Return([]*models.ScheduledPost{post}, nil)
	sa.On("GetByID", mock.Anything, int64(4)).Return(account, nil)

	job := newTestScheduledPostJob(sp, sa, ig, fb, stability, r2)
	job.ProcessDuePosts(context.Background())

	sp.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ig.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessDuePostsPlatformRejectionIsTerminal(t *testing.T) {
	sp := new(mockScheduledPostRepo)
	sa := new(mockSocialAccountRepo)
	ig := new(mockInstagramService)
	fb := new(mockFacebookService)
	stability := new(mockStabilityService)
	r2 := new(mockR2Service)

	post := &models.ScheduledPost{
		ID:              9,
		SocialAccountID: 3,
		Prompt:          "caption",
		PostType:        models.PostTypePhoto,
		ImageURL:        "https://cdn.example.com/img.jpg",
	}

	sp.On("ListDue", mock.Anything, mock.Anything).Return([]*models.ScheduledPost{post}, nil)
	sa.On("GetByID", mock.Anything, int64(3)).Return(connectedAccount(t, 3, models.PlatformInstagram), nil)
	ig.On("CreatePost", mock.Anything, "9001", "page-token", post.Prompt, post.ImageURL).
		Return(&transfer.PostResult{Success: false, Error: "media unreachable"}, nil)
	sp.On("Finalize", mock.Anything, int64(9), models.ScheduledPostStatusFailed, "", mock.Anything).Return(nil)

	job := newTestScheduledPostJob(sp, sa, ig, fb, stability, r2)
	job.ProcessDuePosts(context.Background())

	sp.AssertExpectations(t)
}

func TestProcessDuePostsCarouselKeepsSuppliedMedia(t *testing.T) {
	sp := new(mockScheduledPostRepo)
	sa := new(mockSocialAccountRepo)
	ig := new(mockInstagramService)
	fb := new(mockFacebookService)
	stability := new(mockStabilityService)
	r2 := new(mockR2Service)

	urls := pq.StringArray{"https://a.jpg", "https://b.jpg", "https://c.jpg"}
	post := &models.ScheduledPost{
		ID:              10,
		SocialAccountID: 3,
		Prompt:          "three views",
		PostType:        models.PostTypeCarousel,
		MediaURLs:       urls,
	}

	sp.On("ListDue", mock.Anything, mock.Anything).Return([]*models.ScheduledPost{post}, nil)
	sa.On("GetByID", mock.Anything, int64(3)).Return(connectedAccount(t, 3, models.PlatformInstagram), nil)
	ig.On("CreateCarouselPost", mock.Anything, "9001", "page-token", post.Prompt, []string(urls)).
		Return(&transfer.PostResult{Success: true, PostID: "178002"}, nil)
	sp.On("Finalize", mock.Anything, int64(10), models.ScheduledPostStatusPosted, "178002", mock.Anything).Return(nil)

	job := newTestScheduledPostJob(sp, sa, ig, fb, stability, r2)
	job.ProcessDuePosts(context.Background())

	stability.AssertNotCalled(t, "GenerateImage", mock.Anything, mock.Anything, mock.Anything)
	sp.AssertNotCalled(t, "UpdateMedia", mock.Anything, mock.Anything)
	sp.AssertExpectations(t)
}

func TestProcessDuePostsCarouselGeneratesMissingMedia(t *testing.T) {
	sp := new(mockScheduledPostRepo)
	sa := new(mockSocialAccountRepo)
	ig := new(mockInstagramService)
	fb := new(mockFacebookService)
	stability := new(mockStabilityService)
	r2 := new(mockR2Service)

	post := &models.ScheduledPost{
		ID:              16,
		SocialAccountID: 3,
		Prompt:          "city skyline tour",
		PostType:        models.PostTypeCarousel,
	}

	// A short prompt yields the three-image minimum, one per variation.
	generated := make([]string, 0, 3)
	for i := 1; i <= 3; i++ {
		data := []byte(fmt.Sprintf("slide-bytes-%d", i))
		uploadedURL := fmt.Sprintf("https://cdn.example.com/instagram/slide-%d.jpg", i)
		stability.On("GenerateImage", mock.Anything, fmt.Sprintf("city skyline tour - variation %d", i), "feed").
			Return(&transfer.ImageResult{ImageBase64: base64.StdEncoding.EncodeToString(data), Success: true}).Once()
		r2.On("UploadImage", mock.Anything, data, "instagram").Return(uploadedURL, nil).Once()
		generated = append(generated, uploadedURL)
	}

	sp.On("ListDue", mock.Anything, mock.Anything).Return([]*models.ScheduledPost{post}, nil)
	sp.On("UpdateMedia", mock.Anything, post).Return(nil)
	sa.On("GetByID", mock.Anything, int64(3)).Return(connectedAccount(t, 3, models.PlatformInstagram), nil)
	ig.On("CreateCarouselPost", mock.Anything, "9001", "page-token", post.Prompt, generated).
		Return(&transfer.PostResult{Success: true, PostID: "178004"}, nil)
	sp.On("Finalize", mock.Anything, int64(16), models.ScheduledPostStatusPosted, "178004", mock.Anything).Return(nil)

	job := newTestScheduledPostJob(sp, sa, ig, fb, stability, r2)
	job.ProcessDuePosts(context.Background())

	stability.AssertNumberOfCalls(t, "GenerateImage", 3)
	sp.AssertExpectations(t)
	stability.AssertExpectations(t)
	r2.AssertExpectations(t)
	ig.AssertExpectations(t)
}

func TestProcessDuePostsCarouselGenerationShortfallFails(t *testing.T) {
	sp := new(mockScheduledPostRepo)
	sa := new(mockSocialAccountRepo)
	ig := new(mockInstagramService)
	fb := new(mockFacebookService)
	stability := new(mockStabilityService)
	r2 := new(mockR2Service)

	post := &models.ScheduledPost{
		ID:              11,
		SocialAccountID: 3,
		Prompt:          "short",
		PostType:        models.PostTypeCarousel,
	}

	sp.On("ListDue", mock.Anything, mock.Anything).Return([]*models.ScheduledPost{post}, nil)
	stability.On("GenerateImage", mock.Anything, mock.Anything, "feed").
		Return(&transfer.ImageResult{Success: false, Error: "quota exceeded"})
	sp.On("Finalize", mock.Anything, int64(11), models.ScheduledPostStatusFailed, "", mock.Anything).Return(nil)

	job := newTestScheduledPostJob(sp, sa, ig, fb, stability, r2)
	job.ProcessDuePosts(context.Background())

	ig.AssertNotCalled(t, "CreateCarouselPost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	sp.AssertExpectations(t)
}

func TestProcessDuePostsReelWithoutVideoFails(t *testing.T) {
	sp := new(mockScheduledPostRepo)
	sa := new(mockSocialAccountRepo)
	ig := new(mockInstagramService)
	fb := new(mockFacebookService)
	stability := new(mockStabilityService)
	r2 := new(mockR2Service)

	post := &models.ScheduledPost{
		ID:              12,
		SocialAccountID: 3,
		Prompt:          "reel caption",
		PostType:        models.PostTypeReel,
	}

	sp.On("ListDue", mock.Anything, mock.Anything).Return([]*models.ScheduledPost{post}, nil)
	sp.On("Finalize", mock.Anything, int64(12), models.ScheduledPostStatusFailed, "", mock.Anything).Return(nil)

	job := newTestScheduledPostJob(sp, sa, ig, fb, stability, r2)
	job.ProcessDuePosts(context.Background())

	sp.AssertExpectations(t)
}

func TestProcessDuePostsEmptyPromptFails(t *testing.T) {
	sp := new(mockScheduledPostRepo)
	sa := new(mockSocialAccountRepo)
	ig := new(mockInstagramService)
	fb := new(mockFacebookService)
	stability := new(mockStabilityService)
	r2 := new(mockR2Service)

	post := &models.ScheduledPost{
		ID:              13,
		SocialAccountID: 3,
		PostType:        models.PostTypeText,
	}

	sp.On("ListDue", mock.Anything, mock.Anything).Return([]*models.ScheduledPost{post}, nil)
	sp.On("Finalize", mock.Anything, int64(13), models.ScheduledPostStatusFailed, "", mock.Anything).Return(nil)

	job := newTestScheduledPostJob(sp, sa, ig, fb, stability, r2)
	job.ProcessDuePosts(context.Background())

	sp.AssertExpectations(t)
	fb.AssertNotCalled(t, "PostText", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessDuePostsTextOnFacebookPage(t *testing.T) {
	sp := new(mockScheduledPostRepo)
	sa := new(mockSocialAccountRepo)
	ig := new(mockInstagramService)
	fb := new(mockFacebookService)
	stability := new(mockStabilityService)
	r2 := new(mockR2Service)

	post := &models.ScheduledPost{
		ID:              14,
		SocialAccountID: 5,
		Prompt:          "announcement",
		PostType:        models.PostTypeText,
	}

	sp.On("ListDue", mock.Anything, mock.Anything).Return([]*models.ScheduledPost{post}, nil)
	sa.On("GetByID", mock.Anything, int64(5)).Return(connectedAccount(t, 5, models.PlatformFacebook), nil)
	fb.On("PostText", mock.Anything, "9001", "page-token", "announcement").
		Return(&transfer.PostResult{Success: true, PostID: "9001_42"}, nil)
	sp.On("Finalize", mock.Anything, int64(14), models.ScheduledPostStatusPosted, "9001_42", mock.Anything).Return(nil)

	job := newTestScheduledPostJob(sp, sa, ig, fb, stability, r2)
	job.ProcessDuePosts(context.Background())

	sp.AssertExpectations(t)
	fb.AssertExpectations(t)
}

func TestProcessDuePostsUsesGeneratedCaption(t *testing.T) {
	sp := new(mockScheduledPostRepo)
	sa := new(mockSocialAccountRepo)
	ig := new(mockInstagramService)
	fb := new(mockFacebookService)
	stability := new(mockStabilityService)
	r2 := new(mockR2Service)
	groq := new(mockGroqService)

	post := &models.ScheduledPost{
		ID:              15,
		SocialAccountID: 3,
		Prompt:          "new espresso blend launch",
		PostType:        models.PostTypePhoto,
		ImageURL:        "https://cdn.example.com/blend.jpg",
	}

	sp.On("ListDue", mock.Anything, mock.Anything).Return([]*models.ScheduledPost{post}, nil)
	sa.On("GetByID", mock.Anything, int64(3)).Return(connectedAccount(t, 3, models.PlatformInstagram), nil)
	groq.On("GenerateCaption", mock.Anything, post.Prompt, maxCaptionLength).
		Return(&transfer.GenerationResult{Content: "Our new espresso blend is here ☕", Success: true})
	ig.On("CreatePost", mock.Anything, "9001", "page-token", "Our new espresso blend is here ☕", post.ImageURL).
		Return(&transfer.PostResult{Success: true, PostID: "178003"}, nil)
	sp.On("Finalize", mock.Anything, int64(15), models.ScheduledPostStatusPosted, "178003", mock.Anything).Return(nil)

	job := NewScheduledPostJob(testConfig(), sp, sa, ig, fb, groq, stability, r2, nil, testLogger())
	job.ProcessDuePosts(context.Background())

	groq.AssertExpectations(t)
	ig.AssertExpectations(t)
	sp.AssertExpectations(t)
}

func TestRunTickRecoversFromPanic(t *testing.T) {
	sp := new(mockScheduledPostRepo)
	sa := new(mockSocialAccountRepo)
	ig := new(mockInstagramService)
	fb := new(mockFacebookService)
	stability := new(mockStabilityService)
	r2 := new(mockR2Service)

	sp.On("ListDue", mock.Anything, mock.Anything).Panic("boom")

	job := newTestScheduledPostJob(sp, sa, ig, fb, stability, r2)
	require.NotPanics(t, func() { job.runTick(context.Background()) })
}

func TestRunStopsOnContextCancel(t *testing.T) {
	sp := new(mockScheduledPostRepo)
	sa := new(mockSocialAccountRepo)
	ig := new(mockInstagramService)
	fb := new(mockFacebookService)
	stability := new(mockStabilityService)
	r2 := new(mockR2Service)

	sp.On("ListDue", mock.Anything, mock.Anything).Return([]*models.ScheduledPost{}, nil)

	job := newTestScheduledPostJob(sp, sa, ig, fb, stability, r2)
	job.SetTickInterval(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
