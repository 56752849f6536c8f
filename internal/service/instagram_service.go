package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	config "github.com/Lalfakawma-Vangchhia/dashboard-automation/configs"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/transfer"
)

// InstagramService talks to the Instagram Graph API through a page access
// token. Publishing is the usual two-step container/media_publish dance.
type InstagramService interface {
	CreatePost(ctx context.Context, igUserID, accessToken, caption, imageURL string) (*transfer.PostResult, error)
	CreateCarouselPost(ctx context.Context, igUserID, accessToken, caption string, imageURLs []string) (*transfer.PostResult, error)
	CreateReelPost(ctx context.Context, igUserID, accessToken, caption, videoURL string) (*transfer.PostResult, error)
	GetComments(ctx context.Context, mediaID, accessToken string, limit int) ([]transfer.Comment, error)
	PostComment(ctx context.Context, mediaID, accessToken, text, parentCommentID string) (*transfer.PostResult, error)
	RefreshToken(ctx context.Context, accessToken string) (string, time.Time, error)
}

type instagramService struct {
	cfg config.Config
}

func NewInstagramService(cfg config.Config) InstagramService {
	return &instagramService{cfg: cfg}
}

func (ig *instagramService) graphURL(path string) string {
	return fmt.Sprintf("https://graph.facebook.com/%s/%s", ig.cfg.GraphAPIVersion, path)
}

func (ig *instagramService) CreatePost(ctx context.Context, igUserID, accessToken, caption, imageURL string) (*transfer.PostResult, error) {
	containerID, err := ig.createContainer(ctx, igUserID, map[string]interface{}{
		"image_url":    imageURL,
		"caption":      caption,
		"access_token": accessToken,
	})
	if err != nil {
		return &transfer.PostResult{Success: false, Error: err.Error()}, err
	}

	return ig.publish(ctx, igUserID, containerID, accessToken)
}

func (ig *instagramService) CreateCarouselPost(ctx context.Context, igUserID, accessToken, caption string, imageURLs []string) (*transfer.PostResult, error) {
	childIDs := make([]string, 0, len(imageURLs))
	for _, imageURL := range imageURLs {
		childID, err := ig.createContainer(ctx, igUserID, map[string]interface{}{
			"image_url":        imageURL,
			"is_carousel_item": true,
			"access_token":     accessToken,
		})
		if err != nil {
			return &transfer.PostResult{Success: false, Error: err.Error()}, err
		}
		childIDs = append(childIDs, childID)
	}

	containerID, err := ig.createContainer(ctx, igUserID, map[string]interface{}{
		"media_type":   "CAROUSEL",
		"caption":      caption,
		"children":     childIDs,
		"access_token": accessToken,
	})
	if err != nil {
		return &transfer.PostResult{Success: false, Error: err.Error()}, err
	}

	return ig.publish(ctx, igUserID, containerID, accessToken)
}

func (ig *instagramService) CreateReelPost(ctx context.Context, igUserID, accessToken, caption, videoURL string) (*transfer.PostResult, error) {
	containerID, err := ig.createContainer(ctx, igUserID, map[string]interface{}{
		"media_type":   "REELS",
		"video_url":    videoURL,
		"caption":      caption,
		"access_token": accessToken,
	})
	if err != nil {
		return &transfer.PostResult{Success: false, Error: err.Error()}, err
	}

	// Video containers need processing time before they can be published.
	if err := ig.waitForContainer(ctx, containerID, accessToken); err != nil {
		return &transfer.PostResult{Success: false, Error: err.Error()}, err
	}

	return ig.publish(ctx, igUserID, containerID, accessToken)
}

func (ig *instagramService) createContainer(ctx context.Context, igUserID string, payload map[string]interface{}) (string, error) {
	var result struct {
		ID string `json:"id"`
	}
	if err := ig.postJSON(ctx, ig.graphURL(igUserID+"/media"), payload, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("no media container ID returned from Instagram")
	}
	return result.ID, nil
}

func (ig *instagramService) waitForContainer(ctx context.Context, containerID, accessToken string) error {
	for attempt := 0; attempt < 10; attempt++ {
		reqURL := fmt.Sprintf("%s?fields=status_code&access_token=%s",
			ig.graphURL(containerID), url.QueryEscape(accessToken))

		var status struct {
			StatusCode string `json:"status_code"`
		}
		if err := ig.getJSON(ctx, reqURL, &status); err != nil {
			return err
		}

		switch status.StatusCode {
		case "FINISHED":
			return nil
		case "ERROR":
			return fmt.Errorf("media container %s failed processing", containerID)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("media container %s not ready after polling", containerID)
}

func (ig *instagramService) publish(ctx context.Context, igUserID, containerID, accessToken string) (*transfer.PostResult, error) {
	var result struct {
		ID string `json:"id"`
	}
	payload := map[string]interface{}{
		"creation_id":  containerID,
		"access_token": accessToken,
	}
	if err := ig.postJSON(ctx, ig.graphURL(igUserID+"/media_publish"), payload, &result); err != nil {
		return &transfer.PostResult{Success: false, Error: err.Error()}, err
	}
	if result.ID == "" {
		return &transfer.PostResult{Success: false, Error: "no media ID returned from Instagram"},
			fmt.Errorf("no media ID returned from Instagram")
	}

	return &transfer.PostResult{Success: true, PostID: result.ID}, nil
}

func (ig *instagramService) GetComments(ctx context.Context, mediaID, accessToken string, limit int) ([]transfer.Comment, error) {
	reqURL := fmt.Sprintf("%s?fields=id,text,timestamp,from&limit=%d&access_token=%s",
		ig.graphURL(mediaID+"/comments"), limit, url.QueryEscape(accessToken))

	var result struct {
		Data []transfer.Comment `json:"data"`
	}
	if err := ig.getJSON(ctx, reqURL, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (ig *instagramService) PostComment(ctx context.Context, mediaID, accessToken, text, parentCommentID string) (*transfer.PostResult, error) {
	// Replies go on the parent comment, top-level comments on the media.
	path := mediaID + "/comments"
	if parentCommentID != "" {
		path = parentCommentID + "/replies"
	}

	var result struct {
		ID string `json:"id"`
	}
	payload := map[string]interface{}{
		"message":      text,
		"access_token": accessToken,
	}
	if err := ig.postJSON(ctx, ig.graphURL(path), payload, &result); err != nil {
		return &transfer.PostResult{Success: false, Error: err.Error()}, err
	}

	return &transfer.PostResult{Success: true, PostID: result.ID}, nil
}

func (ig *instagramService) RefreshToken(ctx context.Context, accessToken string) (string, time.Time, error) {
	reqURL := fmt.Sprintf(
		"https://graph.facebook.com/%s/oauth/access_token?grant_type=fb_exchange_token&client_id=%s&client_secret=%s&fb_exchange_token=%s",
		ig.cfg.GraphAPIVersion, ig.cfg.FacebookAppID, ig.cfg.FacebookAppSecret, url.QueryEscape(accessToken),
	)

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := ig.getJSON(ctx, reqURL, &result); err != nil {
		return "", time.Time{}, err
	}
	if result.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("no access token returned")
	}

	expiresIn := result.ExpiresIn
	if expiresIn == 0 {
		expiresIn = int64((60 * 24 * time.Hour).Seconds())
	}
	return result.AccessToken, time.Now().Add(time.Duration(expiresIn) * time.Second), nil
}

func (ig *instagramService) postJSON(ctx context.Context, reqURL string, payload map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return ig.do(req, out)
}

func (ig *instagramService) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	return ig.do(req, out)
}

func (ig *instagramService) do(req *http.Request, out interface{}) error {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
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
			return fmt.Errorf("instagram api error (code %d): %s", graphErr.Error.Code, graphErr.Error.Message)
		}
		return fmt.Errorf("unexpected status code from Instagram: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}
	return nil
}
