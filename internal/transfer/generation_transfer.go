package transfer

// GenerationResult is the outcome of a text generation call. When the
// generator fails the fallback content is still populated so callers can
// decide whether a canned reply is acceptable.
type GenerationResult struct {
	Content    string `json:"content"`
	ModelUsed  string `json:"model_used"`
	TokensUsed int    `json:"tokens_used"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type ImageResult struct {
	ImageBase64 string `json:"image_base64"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

// PostResult is the normalized outcome of a platform publish call.
type PostResult struct {
	Success bool   `json:"success"`
	PostID  string `json:"post_id"`
	Error   string `json:"error,omitempty"`
}

type GraphError struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		IsTransient  bool   `json:"is_transient"`
		FbtraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}
