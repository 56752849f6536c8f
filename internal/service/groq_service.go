package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	config "github.com/Lalfakawma-Vangchhia/dashboard-automation/configs"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/transfer"
)

const groqEndpoint = "https://api.groq.com/openai/v1/chat/completions"

const (
	groqCaptionModel = "llama3-70b-8192"
	groqReplyModel   = "llama-3.1-8b-instant"
)

// GroqService generates captions and comment replies. Generation failures are
// reported through the result's Success flag together with fallback content,
// never as an error: callers decide whether canned text is acceptable.
type GroqService interface {
	GenerateCaption(ctx context.Context, prompt string, maxLength int) *transfer.GenerationResult
	GenerateAutoReply(ctx context.Context, originalComment, commentContext string) *transfer.GenerationResult
}

type groqService struct {
	cfg config.Config
}

func NewGroqService(cfg config.Config) GroqService {
	return &groqService{cfg: cfg}
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqCompletion struct {
	Choices []struct {
		Message groqMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (g *groqService) GenerateCaption(ctx context.Context, prompt string, maxLength int) *transfer.GenerationResult {
	if maxLength <= 0 {
		maxLength = 500
	}

	systemPrompt := fmt.Sprintf(`You are a regular person sharing content on social media in a natural, conversational way.

CRITICAL: Generate ONLY the post content. Do not include any headers, titles, footers, or explanatory text.

Guidelines:
- Write like a real person would naturally speak
- Keep under %d characters
- Use casual, conversational tone
- Include 2-3 relevant emojis naturally in the text
- Do not wrap the caption in quotation marks
- Use a newline before hashtags
- Start directly with the content, no introductions`, maxLength)

	content, tokens, err := g.complete(ctx, groqCaptionModel, systemPrompt, prompt, 250, 0.6)
	if err != nil {
		slog.Info(err.Error())
		return &transfer.GenerationResult{
			Content:   fmt.Sprintf("I'd love to share thoughts about %s! What an interesting topic to explore.", prompt),
			ModelUsed: "fallback",
			Success:   false,
			Error:     err.Error(),
		}
	}

	content = stripOuterQuotes(content)
	content = clampLength(content, maxLength)

	return &transfer.GenerationResult{
		Content:    content,
		ModelUsed:  groqCaptionModel,
		TokensUsed: tokens,
		Success:    true,
	}
}

func (g *groqService) GenerateAutoReply(ctx context.Context, originalComment, commentContext string) *transfer.GenerationResult {
	systemPrompt := `You are a friendly page representative responding to social media comments.

Guidelines:
- Be warm, professional, and helpful
- Keep responses under 200 characters
- Acknowledge the commenter's input
- Be conversational but professional
- Use appropriate emojis sparingly

Generate a personalized response to the following comment:`

	if commentContext == "" {
		commentContext = "General social media page"
	}
	userPrompt := fmt.Sprintf("Comment: %s\nContext: %s", originalComment, commentContext)

	content, tokens, err := g.complete(ctx, groqReplyModel, systemPrompt, userPrompt, 100, 0.6)
	if err != nil {
		slog.Info(err.Error())
		return &transfer.GenerationResult{
			Content:   "Thank you for your comment! We appreciate your engagement.",
			ModelUsed: "fallback",
			Success:   false,
			Error:     err.Error(),
		}
	}

	return &transfer.GenerationResult{
		Content:    stripOuterQuotes(content),
		ModelUsed:  groqReplyModel,
		TokensUsed: tokens,
		Success:    true,
	}
}

func (g *groqService) complete(ctx context.Context, model, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, int, error) {
	if g.cfg.GroqAPIKey == "" {
		return "", 0, fmt.Errorf("groq api key not configured")
	}

	payload := map[string]interface{}{
		"model": model,
		"messages": []groqMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		"max_tokens":  maxTokens,
		"temperature": temperature,
		"top_p":       0.9,
		"stream":      false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", groqEndpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", 0, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.GroqAPIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("unexpected status code from Groq: %d: %s", resp.StatusCode, respBody)
	}

	var completion groqCompletion
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", 0, fmt.Errorf("error parsing response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", 0, fmt.Errorf("no choices returned from Groq")
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), completion.Usage.TotalTokens, nil
}

var outerQuotes = regexp.MustCompile(`^['"]+|['"]+$`)

// stripOuterQuotes removes quotation marks the model wraps around captions
// despite prompt instructions.
func stripOuterQuotes(text string) string {
	return strings.TrimSpace(outerQuotes.ReplaceAllString(text, ""))
}

// clampLength truncates text to at most maxLength bytes including the
// ellipsis, never splitting a multi-byte rune.
func clampLength(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	cut := maxLength - 3
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
