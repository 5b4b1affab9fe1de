package llm

// RequestType discriminates the kinds of request the gateway accepts.
type RequestType string

const (
	RequestChat      RequestType = "chat"
	RequestImage     RequestType = "image"
	RequestImageEdit RequestType = "image-edit"
)

// RequestTypes lists the accepted request types in display order.
var RequestTypes = []RequestType{RequestChat, RequestImage, RequestImageEdit}

// Valid reports whether t is one of the accepted request types.
func (t RequestType) Valid() bool {
	for _, known := range RequestTypes {
		if t == known {
			return true
		}
	}
	return false
}

// RequestEnvelope is the payload a client sends to the gateway for one turn.
// Which fields are meaningful depends on Type:
//   - chat: Messages and SystemMessage
//   - image: Prompt
//   - image-edit: Prompt and Image (data URL, http(s) URL, or raw base64)
type RequestEnvelope struct {
	Type          RequestType `json:"type"`
	Prompt        string      `json:"prompt,omitempty"`
	Messages      []Message   `json:"messages,omitempty"`
	SystemMessage string      `json:"systemMessage,omitempty"`
	Image         string      `json:"image,omitempty"`
}

// ChatCompletionRequest is the upstream chat completion body.
type ChatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// ImageGenerationRequest is the upstream image generation body.
type ImageGenerationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}
