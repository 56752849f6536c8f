package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	config "github.com/Lalfakawma-Vangchhia/dashboard-automation/configs"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/transfer"
)

// FacebookService publishes to a page feed and works the comment surface the
// auto-reply engine needs.
type FacebookService interface {
	PostText(ctx context.Context, pageID, accessToken, message string) (*transfer.PostResult, error)
	PostPhoto(ctx context.Context, pageID, accessToken, message, imageURL string) (*transfer.PostResult, error)
	GetComments(ctx context.Context, postID, accessToken string, limit int) ([]transfer.Comment, error)
	PostCommentReply(ctx context.Context, commentID, accessToken, text string) (*transfer.PostResult, error)
}

type facebookService struct {
	cfg config.Config
}

func NewFacebookService(cfg config.Config) FacebookService {
	return &facebookService{cfg: cfg}
}

func (fb *facebookService) graphURL(path string) string {
	return fmt.Sprintf("https://graph.facebook.com/%s/%s", fb.cfg.GraphAPIVersion, path)
}

func (fb *facebookService) PostText(ctx context.Context, pageID, accessToken, message string) (*transfer.PostResult, error) {
	var result struct {
		ID string `json:"id"`
	}
	payload := map[string]interface{}{
		"message":      message,
		"access_token": accessToken,
	}
	if err := fb.postJSON(ctx, fb.graphURL(pageID+"/feed"), payload, &result); err != nil {
		return &transfer.PostResult{Success: false, Error: err.Error()}, err
	}
	if result.ID == "" {
		return &transfer.PostResult{Success: false, Error: "Facebook API returned no post ID"},
			fmt.Errorf("facebook api returned no post id")
	}

	return &transfer.PostResult{Success: true, PostID: result.ID}, nil
}

func (fb *facebookService) PostPhoto(ctx context.Context, pageID, accessToken, message, imageURL string) (*transfer.PostResult, error) {
	var result struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	payload := map[string]interface{}{
		"url":          imageURL,
		"message":      message,
		"access_token": accessToken,
	}
	if err := fb.postJSON(ctx, fb.graphURL(pageID+"/photos"), payload, &result); err != nil {
		return &transfer.PostResult{Success: false, Error: err.Error()}, err
	}

	postID := result.PostID
	if postID == "" {
		postID = result.ID
	}
	if postID == "" {
		return &transfer.PostResult{Success: false, Error: "Facebook API returned no post ID"},
			fmt.Errorf("facebook api returned no post id")
	}

	return &transfer.PostResult{Success: true, PostID: postID}, nil
}

func (fb *facebookService) GetComments(ctx context.Context, postID, accessToken string, limit int) ([]transfer.Comment, error) {
	reqURL := fmt.Sprintf("%s?fields=id,message,created_time,from&limit=%d&access_token=%s",
		fb.graphURL(postID+"/comments"), limit, url.QueryEscape(accessToken))

	var result struct {
		Data []struct {
			ID          string `json:"id"`
			Message     string `json:"message"`
			CreatedTime string `json:"created_time"`
			From        struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"from"`
		} `json:"data"`
	}
	if err := fb.getJSON(ctx, reqURL, &result); err != nil {
		return nil, err
	}

	comments := make([]transfer.Comment, 0, len(result.Data))
	for _, c := range result.Data {
		comment := transfer.Comment{
			ID:        c.ID,
			Text:      c.Message,
			Timestamp: c.CreatedTime,
		}
		comment.From.ID = c.From.ID
		comment.From.Username = c.From.Name
		comments = append(comments, comment)
	}
	return comments, nil
}

func (fb *facebookService) PostCommentReply(ctx context.Context, commentID, accessToken, text string) (*transfer.PostResult, error) {
	var result struct {
		ID string `json:"id"`
	}
	payload := map[string]interface{}{
		"message":      text,
		"access_token": accessToken,
	}
	if err := fb.postJSON(ctx, fb.graphURL(commentID+"/comments"), payload, &result); err != nil {
		return &transfer.PostResult{Success: false, Error: err.Error()}, err
	}

	return &transfer.PostResult{Success: true, PostID: result.ID}, nil
}

func (fb *facebookService) postJSON(ctx context.Context, reqURL string, payload map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return fb.do(req, out)
}

func (fb *facebookService) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	return fb.do(req, out)
}

func (fb *facebookService) do(req *http.Request, out interface{}) error {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var graphErr transfer.GraphError
		if err := json.Unmarshal(respBody, &graphErr); err == nil && graphErr.Error.Message != "" {
			return fmt.Errorf("facebook api error (code %d): %s", graphErr.Error.Code, graphErr.Error.Message)
		}
		return fmt.Errorf("unexpected status code from Facebook: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}
	return nil
}
