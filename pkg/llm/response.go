package llm

// ResponseKind discriminates what a ResponseEnvelope carries.
type ResponseKind string

const (
	ResponseText  ResponseKind = "text"
	ResponseImage ResponseKind = "image"
	ResponseError ResponseKind = "error"
)

// ResponseEnvelope is the normalized result of one turn as seen by the renderer.
type ResponseEnvelope struct {
	Kind    ResponseKind `json:"kind"`
	Text    string       `json:"text,omitempty"`    // kind=text
	URL     string       `json:"url,omitempty"`     // kind=image
	Message string       `json:"message,omitempty"` // kind=error
	Detail  any          `json:"detail,omitempty"`  // kind=error
}

// TextResponse wraps assistant text.
func TextResponse(text string) ResponseEnvelope {
	return ResponseEnvelope{Kind: ResponseText, Text: text}
}

// ImageResponse wraps an image reference (http(s) or data URL).
func ImageResponse(url string) ResponseEnvelope {
	return ResponseEnvelope{Kind: ResponseImage, URL: url}
}

// ErrorResult wraps a failed turn.
func ErrorResult(message string, detail any) ResponseEnvelope {
	return ResponseEnvelope{Kind: ResponseError, Message: message, Detail: detail}
}

// ChatCompletionResponse is the upstream chat completion body.
type ChatCompletionResponse struct {
	ID      string   `json:"id,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
}

// Choice is one candidate completion.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// ImagesResponse is the upstream body for both image generation and edits.
type ImagesResponse struct {
	Created int64       `json:"created,omitempty"`
	Data    []ImageData `json:"data"`
}

// ImageData is a single generated image. Exactly one of URL or B64JSON is set.
type ImageData struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}
