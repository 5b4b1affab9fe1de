package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatgate/pkg/client"
	"github.com/papercomputeco/chatgate/pkg/llm"
)

var _ = Describe("Client", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		received llm.RequestEnvelope
		status   int
		reply    string
	)

	BeforeEach(func() {
		ctx = context.Background()
		status = http.StatusOK
		reply = `{}`
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))
			body, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(body, &received)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			io.WriteString(w, reply)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func() *client.Client {
		return client.New(server.URL, server.Client(), zap.NewNop())
	}

	It("sends chat envelopes in the gateway wire shape", func() {
		reply = `{"choices":[{"index":0,"message":{"role":"assistant","content":"Olá!"}}]}`

		resp := newClient().Send(ctx, llm.RequestEnvelope{
			Type:          llm.RequestChat,
			Messages:      []llm.Message{llm.UserTurn("oi")},
			SystemMessage: "persona",
		})

		Expect(received.Type).To(Equal(llm.RequestChat))
		Expect(received.SystemMessage).To(Equal("persona"))
		Expect(received.Messages).To(Equal([]llm.Message{llm.UserTurn("oi")}))
		Expect(resp).To(Equal(llm.TextResponse("Olá!")))
	})

	It("reads image urls for image requests", func() {
		reply = `{"data":[{"url":"https://x/y.png"}]}`

		resp := newClient().Send(ctx, llm.RequestEnvelope{Type: llm.RequestImage, Prompt: "gato"})

		Expect(received.Prompt).To(Equal("gato"))
		Expect(resp).To(Equal(llm.ImageResponse("https://x/y.png")))
	})

	It("turns base64 image data into a data url", func() {
		reply = `{"data":[{"b64_json":"AAAA"}]}`

		resp := newClient().Send(ctx, llm.RequestEnvelope{Type: llm.RequestImageEdit, Prompt: "p", Image: "i"})

		Expect(resp.Kind).To(Equal(llm.ResponseImage))
		Expect(resp.URL).To(Equal("data:image/png;base64,AAAA"))
	})

	It("surfaces the gateway error message and details", func() {
		status = http.StatusBadRequest
		reply = `{"error":"faltou a imagem","details":{"field":"image"}}`

		resp := newClient().Send(ctx, llm.RequestEnvelope{Type: llm.RequestImageEdit, Prompt: "p"})

		Expect(resp.Kind).To(Equal(llm.ResponseError))
		Expect(resp.Message).To(Equal("faltou a imagem"))
		Expect(resp.Detail).To(HaveKeyWithValue("field", "image"))
	})

	It("apologizes when the error body is unreadable", func() {
		status = http.StatusBadGateway
		reply = `<html>bad gateway</html>`

		resp := newClient().Send(ctx, llm.RequestEnvelope{Type: llm.RequestChat})

		Expect(resp.Kind).To(Equal(llm.ResponseError))
		Expect(resp.Message).To(Equal(client.ConnectionApology))
	})

	It("apologizes when the gateway is unreachable", func() {
		c := client.New("http://127.0.0.1:1", nil, zap.NewNop())

		resp := c.Send(ctx, llm.RequestEnvelope{Type: llm.RequestChat})

		Expect(resp.Kind).To(Equal(llm.ResponseError))
		Expect(resp.Message).To(Equal(client.ConnectionApology))
	})

	It("apologizes when a chat reply has no choices", func() {
		reply = `{"choices":[]}`

		resp := newClient().Send(ctx, llm.RequestEnvelope{Type: llm.RequestChat})

		Expect(resp.Kind).To(Equal(llm.ResponseError))
		Expect(resp.Message).To(Equal(client.ConnectionApology))
	})
})

var _ = Describe("ImageReference", func() {
	It("wraps picked bytes in a sniffed data url", func() {
		ref := client.ImageReference([]byte("\x89PNG\r\n\x1a\n0000"))
		Expect(strings.HasPrefix(ref, "data:image/png")).To(BeTrue())
	})
})
