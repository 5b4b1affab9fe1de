package classifier

// Persona pairs a prefix trigger with the system prompt it selects.
type Persona struct {
	Trigger      string `toml:"trigger" yaml:"trigger"`
	SystemPrompt string `toml:"system_prompt" yaml:"system_prompt"`
}

// Rules is the routing table used to classify an utterance.
type Rules struct {
	// ImageTrigger prefixes a request for image generation.
	ImageTrigger string

	// Personas are tried in order; the first matching trigger wins.
	Personas []Persona

	// DefaultPrompt is used when no persona trigger matches.
	DefaultPrompt string
}

const (
	DefaultImageTrigger = "criar imagem"
	DefaultPersona      = "Você é um assistente prestativo que responde em português."
)

// DefaultRules returns the routing table the widget ships with.
func DefaultRules() Rules {
	return Rules{
		ImageTrigger: DefaultImageTrigger,
		Personas: []Persona{
			{Trigger: "programar", SystemPrompt: "Você é um assistente prestativo que responde em português e ajuda com programação."},
			{Trigger: "ajudar a escrever", SystemPrompt: "Você é um assistente prestativo que responde em português e ajuda na escrita."},
			{Trigger: "resumir texto", SystemPrompt: "Você é um assistente prestativo que responde em português e ajuda a resumir textos."},
			{Trigger: "aconselhar", SystemPrompt: "Você é um assistente prestativo que responde em português e dá conselhos."},
		},
		DefaultPrompt: DefaultPersona,
	}
}

// SystemPromptFor returns the persona prompt selected by input.
func (r Rules) SystemPromptFor(input string) string {
	for _, p := range r.Personas {
		if p.Trigger == "" {
			continue
		}
		if _, ok := cutPrefixFold(input, p.Trigger); ok {
			return p.SystemPrompt
		}
	}
	return r.DefaultPrompt
}
