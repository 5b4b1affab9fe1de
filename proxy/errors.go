package proxy

import (
	"fmt"
)

// User-facing gateway messages.
const (
	msgMissingAPIKey  = "A chave da API da OpenAI não está configurada no servidor."
	msgUpstreamFailed = "A API da OpenAI retornou um erro."
	msgInternal       = "Ocorreu um erro interno no servidor."
	msgInvalidType    = `Tipo de requisição inválido. Deve ser "chat", "image" ou "image-edit".`
	msgEditIncomplete = "Para editar uma imagem, envie a imagem e a instrução de edição."
	msgPromptRequired = "Descreva a imagem que você gostaria de criar."
	msgBadImage       = "Não foi possível ler a imagem enviada. Envie um PNG, JPEG ou GIF."
	msgSquarePNG      = "A imagem precisa ser um PNG quadrado (mesma largura e altura) com menos de 4 MB. Recorte ou redimensione a imagem e tente novamente."
)

// squarePNGComplaint is the upstream edit error rewritten into msgSquarePNG.
const squarePNGComplaint = "must be a square PNG"

// ConfigurationError means the gateway cannot serve any request as deployed.
type ConfigurationError struct {
	Setting string
}

func (e ConfigurationError) Error() string {
	return "missing configuration: " + e.Setting
}

// ValidationError means the request shape is wrong. Message is shown to the user.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// UpstreamError is a non-success answer from the provider.
type UpstreamError struct {
	Status  int
	Message string
	Details any
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}

// TransportError wraps failures moving bytes between the client, the gateway
// and the upstream.
type TransportError struct {
	Op  string
	Err error
}

func (e TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e TransportError) Unwrap() error {
	return e.Err
}
