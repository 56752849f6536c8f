package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	config "github.com/Lalfakawma-Vangchhia/dashboard-automation/configs"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/models"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/repository"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/service"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/transfer"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/pkg/utils"
)

const (
	// maxRepliesPerExecution caps replies per rule per tick to avoid spam.
	maxRepliesPerExecution = 3
	commentFetchLimit      = 25
	// firstRunLookback is the watermark for rules that have never executed.
	firstRunLookback = 10 * time.Minute
)

// CommentClient is the platform surface the engine needs: fetch recent
// comments on a post and answer one. Instagram and Facebook accounts are
// processed by the same procedure through this interface.
type CommentClient interface {
	FetchComments(ctx context.Context, postID, accessToken string, limit int) ([]transfer.Comment, error)
	Reply(ctx context.Context, mediaID, accessToken, text, parentCommentID string) (*transfer.PostResult, error)
}

type instagramCommentClient struct {
	ig service.InstagramService
}

func (c instagramCommentClient) FetchComments(ctx context.Context, postID, accessToken string, limit int) ([]transfer.Comment, error) {
	return c.ig.GetComments(ctx, postID, accessToken, limit)
}

func (c instagramCommentClient) Reply(ctx context.Context, mediaID, accessToken, text, parentCommentID string) (*transfer.PostResult, error) {
	return c.ig.PostComment(ctx, mediaID, accessToken, text, parentCommentID)
}

type facebookCommentClient struct {
	fb service.FacebookService
}

func (c facebookCommentClient) FetchComments(ctx context.Context, postID, accessToken string, limit int) ([]transfer.Comment, error) {
	return c.fb.GetComments(ctx, postID, accessToken, limit)
}

func (c facebookCommentClient) Reply(ctx context.Context, mediaID, accessToken, text, parentCommentID string) (*transfer.PostResult, error) {
	// Facebook replies attach to the parent comment, not the post.
	return c.fb.PostCommentReply(ctx, parentCommentID, accessToken, text)
}

// AutoReplyJob answers new comments on monitored posts for every active
// auto-reply rule. It runs on the due-post loop's cadence.
type AutoReplyJob struct {
	cfg        config.Config
	rules      repository.AutomationRuleRepository
	sa         repository.SocialAccountRepository
	groq       service.GroqService
	clients    map[string]CommentClient
	classifier ReplyClassifier
	replied    *repliedCache
	log        *slog.Logger
	shuffle    func([]string)
}

func NewAutoReplyJob(
	cfg config.Config,
	rules repository.AutomationRuleRepository,
	sa repository.SocialAccountRepository,
	groq service.GroqService,
	ig service.InstagramService,
	fb service.FacebookService,
	log *slog.Logger) *AutoReplyJob {
	return &AutoReplyJob{
		cfg:   cfg,
		rules: rules,
		sa:    sa,
		groq:  groq,
		clients: map[string]CommentClient{
			models.PlatformInstagram: instagramCommentClient{ig: ig},
			models.PlatformFacebook:  facebookCommentClient{fb: fb},
		},
		classifier: NewPhraseClassifier(),
		replied:    newRepliedCache(),
		log:        log,
		shuffle: func(ids []string) {
			rand.Shuffle(len(ids), func(i, k int) { ids[i], ids[k] = ids[k], ids[i] })
		},
	}
}

// SetClassifier swaps the automated-reply detector.
func (j *AutoReplyJob) SetClassifier(c ReplyClassifier) {
	j.classifier = c
}

// ProcessAll runs one auto-reply pass over every active rule. Rule failures
// are isolated: one broken rule never blocks the rest.
func (j *AutoReplyJob) ProcessAll(ctx context.Context) {
	rules, err := j.rules.ListActiveByType(ctx, models.RuleTypeAutoReply)
	if err != nil {
		j.log.Error("list auto-reply rules", "error", err)
		return
	}
	if len(rules) == 0 {
		return
	}
	j.log.Info("processing auto-reply rules", "count", len(rules))

	for _, rule := range rules {
		if ctx.Err() != nil {
			return
		}
		if err := j.processRule(ctx, rule); err != nil {
			j.log.Error("process auto-reply rule", "rule_id", rule.ID, "error", err)
		}
	}
}

func (j *AutoReplyJob) processRule(ctx context.Context, rule *models.AutomationRule) error {
	account, err := j.sa.GetByID(ctx, rule.SocialAccountID)
	if err != nil {
		return err
	}
	if account == nil || !account.IsConnected {
		j.log.Warn("account for rule missing or not connected", "rule_id", rule.ID, "account_id", rule.SocialAccountID)
		return nil
	}

	client, ok := j.clients[account.Platform]
	if !ok {
		return fmt.Errorf("no comment client for platform %s", account.Platform)
	}

	var actions transfer.RuleActions
	if len(rule.Actions) > 0 {
		if err := json.Unmarshal(rule.Actions, &actions); err != nil {
			return fmt.Errorf("decoding rule actions: %w", err)
		}
	}
	// The stored payload flag can lag behind is_active when a toggle write
	// only partially lands. Both must agree before any reply goes out.
	if !actions.AutoReplyEnabled {
		return nil
	}

	postIDs := actions.MonitoredPostIDs()
	if len(postIDs) == 0 {
		return nil
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(j.cfg.SecretKey))
	if err != nil || accessToken == "" {
		return fmt.Errorf("no usable access token for account %d", account.ID)
	}

	watermark := time.Now().UTC().Add(-firstRunLookback)
	if rule.LastExecutionAt.Valid {
		watermark = rule.LastExecutionAt.Time
	}

	// Shuffling spreads the reply budget across posts instead of always
	// favoring the first selected one.
	shuffled := make([]string, len(postIDs))
	copy(shuffled, postIDs)
	j.shuffle(shuffled)

	totalReplies := 0
	for _, postID := range shuffled {
		if totalReplies >= maxRepliesPerExecution {
			break
		}
		totalReplies += j.processPostComments(ctx, client, postID, account, accessToken, rule, actions,
			watermark, maxRepliesPerExecution-totalReplies)
	}

	if totalReplies > 0 {
		j.log.Info("auto-reply pass finished", "rule_id", rule.ID, "replies", totalReplies)
	}
	return j.rules.SetLastExecution(ctx, rule.ID, time.Now().UTC())
}

func (j *AutoReplyJob) processPostComments(
	ctx context.Context,
	client CommentClient,
	postID string,
	account *models.SocialAccount,
	accessToken string,
	rule *models.AutomationRule,
	actions transfer.RuleActions,
	watermark time.Time,
	maxReplies int) int {

	comments, err := client.FetchComments(ctx, postID, accessToken, commentFetchLimit)
	if err != nil {
		j.log.Error("fetch comments", "post_id", postID, "error", err)
		return 0
	}

	replies := 0
	for _, comment := range comments {
		if replies >= maxReplies {
			break
		}
		if !j.isRecent(comment, watermark) {
			continue
		}
		if !j.shouldReply(comment, account.PlatformUserID) {
			continue
		}
		if j.replyToComment(ctx, client, comment, accessToken, rule, actions) {
			replies++
		}
	}
	return replies
}

// isRecent keeps only comments newer than the watermark. Comments with a
// missing or unparseable timestamp are included rather than dropped, so a
// platform format change cannot silently swallow replies.
func (j *AutoReplyJob) isRecent(comment transfer.Comment, watermark time.Time) bool {
	if comment.Timestamp == "" {
		return true
	}
	at, err := parseGraphTimestamp(comment.Timestamp)
	if err != nil {
		j.log.Warn("unparseable comment timestamp", "comment_id", comment.ID, "timestamp", comment.Timestamp)
		return true
	}
	return at.After(watermark)
}

func (j *AutoReplyJob) shouldReply(comment transfer.Comment, ownPlatformID string) bool {
	if comment.From.ID == ownPlatformID {
		return false
	}
	if j.classifier.IsAutomatedReply(comment.Text) {
		return false
	}
	if j.replied.hasReplied(comment.ID, time.Now().UTC()) {
		return false
	}
	return true
}

func (j *AutoReplyJob) replyToComment(
	ctx context.Context,
	client CommentClient,
	comment transfer.Comment,
	accessToken string,
	rule *models.AutomationRule,
	actions transfer.RuleActions) bool {

	now := time.Now().UTC()

	mediaID := resolveMediaID(comment, actions)
	if mediaID == "" {
		j.log.Error("cannot determine media id for comment", "comment_id", comment.ID)
		return false
	}

	replyText := j.generateReply(ctx, comment, actions.ResponseTemplate)

	result, err := client.Reply(ctx, mediaID, accessToken, replyText, comment.ID)
	if err != nil || result == nil || !result.Success {
		message := "unknown error"
		if err != nil {
			message = err.Error()
		} else if result != nil && result.Error != "" {
			message = result.Error
		}
		j.log.Error("post auto-reply", "comment_id", comment.ID, "error", message)
		if err := j.rules.RecordError(ctx, rule.ID, now, message); err != nil {
			j.log.Error("record rule error", "rule_id", rule.ID, "error", err)
		}
		return false
	}

	j.replied.markReplied(comment.ID, now)
	if err := j.rules.RecordSuccess(ctx, rule.ID, now); err != nil {
		j.log.Error("record rule success", "rule_id", rule.ID, "error", err)
	}
	return true
}

// generateReply asks the generator for a contextual reply and guarantees the
// commenter is mentioned even when the model leaves the handle out. When
// generation fails the canned fallback still goes out.
func (j *AutoReplyJob) generateReply(ctx context.Context, comment transfer.Comment, template string) string {
	name := comment.CommenterName()

	commentContext := fmt.Sprintf("Comment by %s: %s", name, comment.Text)
	if template != "" {
		commentContext += "\nResponse template guide: " + template
	}

	result := j.groq.GenerateAutoReply(ctx, comment.Text, commentContext)
	if !result.Success {
		return fmt.Sprintf("@%s Thanks for your comment! We appreciate your engagement. 😊", name)
	}

	reply := result.Content
	if !strings.Contains(strings.ToLower(reply), strings.ToLower(name)) {
		reply = fmt.Sprintf("@%s %s", name, reply)
	}
	return reply
}

// resolveMediaID recovers the media a comment belongs to. Graph comment ids
// are usually {media id}_{comment id}; when that fails the rule's first
// monitored post is the fallback target.
func resolveMediaID(comment transfer.Comment, actions transfer.RuleActions) string {
	if comment.MediaID != "" {
		return comment.MediaID
	}
	if idx := strings.Index(comment.ID, "_"); idx > 0 {
		return comment.ID[:idx]
	}
	if ids := actions.MonitoredPostIDs(); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// parseGraphTimestamp handles the Graph API's timestamp shapes, including
// the non-RFC "+0000" offset.
func parseGraphTimestamp(ts string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05-0700",
	}
	for _, layout := range layouts {
		if at, err := time.Parse(layout, ts); err == nil {
			return at.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %s", ts)
}
