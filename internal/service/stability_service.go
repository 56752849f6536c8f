package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	config "github.com/Lalfakawma-Vangchhia/dashboard-automation/configs"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/transfer"
)

const stabilityEndpoint = "https://api.stability.ai/v1/generation/stable-diffusion-xl-1024-v1-0/text-to-image"

// StabilityService generates images for posts that were scheduled without any
// media reference.
type StabilityService interface {
	GenerateImage(ctx context.Context, prompt, sizingProfile string) *transfer.ImageResult
}

type stabilityService struct {
	cfg config.Config
}

func NewStabilityService(cfg config.Config) StabilityService {
	return &stabilityService{cfg: cfg}
}

type stabilityResponse struct {
	Artifacts []struct {
		Base64       string `json:"base64"`
		FinishReason string `json:"finishReason"`
	} `json:"artifacts"`
}

func (s *stabilityService) GenerateImage(ctx context.Context, prompt, sizingProfile string) *transfer.ImageResult {
	if s.cfg.StabilityAPIKey == "" {
		return &transfer.ImageResult{Success: false, Error: "stability api key not configured"}
	}

	// Feed posts are square, stories/reels are portrait.
	width, height := 1024, 1024
	if sizingProfile == "story" {
		width, height = 768, 1344
	}

	payload := map[string]interface{}{
		"text_prompts": []map[string]interface{}{
			{"text": prompt, "weight": 1},
		},
		"width":   width,
		"height":  height,
		"samples": 1,
		"steps":   30,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return &transfer.ImageResult{Success: false, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", stabilityEndpoint, bytes.NewBuffer(body))
	if err != nil {
		return &transfer.ImageResult{Success: false, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.StabilityAPIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return &transfer.ImageResult{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transfer.ImageResult{Success: false, Error: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status code from Stability: %d: %s", resp.StatusCode, respBody)
		slog.Info(err.Error())
		return &transfer.ImageResult{Success: false, Error: err.Error()}
	}

	var result stabilityResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return &transfer.ImageResult{Success: false, Error: err.Error()}
	}
	if len(result.Artifacts) == 0 {
		return &transfer.ImageResult{Success: false, Error: "no image returned from Stability"}
	}

	return &transfer.ImageResult{
		ImageBase64: result.Artifacts[0].Base64,
		Success:     true,
	}
}
