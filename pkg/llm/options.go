package llm

// Options contains the fixed generation parameters the gateway attaches to
// upstream calls. Clients never choose them.
type Options struct {
	ChatModel  string `json:"chat_model" toml:"chat_model" yaml:"chat_model"`    // Chat completion model
	ImageModel string `json:"image_model" toml:"image_model" yaml:"image_model"` // Image generation model
	EditModel  string `json:"edit_model" toml:"edit_model" yaml:"edit_model"`    // Image edit model
	ImageSize  string `json:"image_size" toml:"image_size" yaml:"image_size"`    // e.g. "1024x1024"
	ImageCount int    `json:"image_count" toml:"image_count" yaml:"image_count"` // Images per call
}

// DefaultOptions returns the parameters the widget has always used.
func DefaultOptions() Options {
	return Options{
		ChatModel:  "gpt-3.5-turbo",
		ImageModel: "dall-e-3",
		EditModel:  "dall-e-2",
		ImageSize:  "1024x1024",
		ImageCount: 1,
	}
}
