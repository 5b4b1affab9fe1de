package tui_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatgate/pkg/classifier"
	"github.com/papercomputeco/chatgate/pkg/imagedata"
	"github.com/papercomputeco/chatgate/pkg/llm"
	"github.com/papercomputeco/chatgate/pkg/render"
	"github.com/papercomputeco/chatgate/pkg/tui"
	"github.com/papercomputeco/chatgate/pkg/widget"
)

// scriptedDispatcher answers every envelope with reply and keeps what it saw.
type scriptedDispatcher struct {
	mu    sync.Mutex
	sent  []llm.RequestEnvelope
	reply llm.ResponseEnvelope
}

func (d *scriptedDispatcher) Send(_ context.Context, env llm.RequestEnvelope) llm.ResponseEnvelope {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, env)
	return d.reply
}

func (d *scriptedDispatcher) Last() llm.RequestEnvelope {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sent[len(d.sent)-1]
}

var _ = Describe("ParseCommand", func() {
	DescribeTable("splits slash commands from messages",
		func(line string, want tui.Command, arg string) {
			cmd, gotArg := tui.ParseCommand(line)
			Expect(cmd).To(Equal(want))
			Expect(gotArg).To(Equal(arg))
		},
		Entry("plain message", "  olá mundo ", tui.CommandNone, "olá mundo"),
		Entry("image without prompt", "/image", tui.CommandImage, ""),
		Entry("image with prompt", "/image um gato azul", tui.CommandImage, "um gato azul"),
		Entry("edit with path", "/edit ./foto.png", tui.CommandEdit, "./foto.png"),
		Entry("feature", "/feature 2", tui.CommandFeature, "2"),
		Entry("case-insensitive", "/NEW", tui.CommandNew, ""),
		Entry("exit alias", "/exit", tui.CommandQuit, ""),
		Entry("unknown", "/dance now", tui.CommandUnknown, "/dance"),
	)
})

var _ = Describe("Session", func() {
	var (
		ctx        context.Context
		dispatcher *scriptedDispatcher
		session    *tui.Session
		clipboard  []string
		tmpDir     string
	)

	BeforeEach(func() {
		ctx = context.Background()
		dispatcher = &scriptedDispatcher{reply: llm.TextResponse("Claro!")}
		clipboard = nil
		tmpDir = GinkgoT().TempDir()
		session = &tui.Session{
			Widget:      widget.New(dispatcher, classifier.DefaultRules(), zap.NewNop()),
			Loader:      imagedata.NewLoader(nil),
			DownloadDir: tmpDir,
			Clipboard: func(s string) error {
				clipboard = append(clipboard, s)
				return nil
			},
		}
	})

	It("submits plain lines as messages", func() {
		_, err := session.Execute(ctx, "oi")
		Expect(err).NotTo(HaveOccurred())
		Expect(dispatcher.Last().Type).To(Equal(llm.RequestChat))
		Expect(session.Widget.Session().History()).To(Equal([]llm.Message{
			llm.UserTurn("oi"),
			llm.AssistantTurn("Claro!"),
		}))
	})

	It("ignores blank lines", func() {
		outcome, err := session.Execute(ctx, "   ")
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(tui.Outcome{}))
		Expect(dispatcher.sent).To(BeEmpty())
	})

	It("asks for an image prompt and sends the one given inline", func() {
		dispatcher.reply = llm.ImageResponse("https://x/y.png")
		_, err := session.Execute(ctx, "/image um gato azul")
		Expect(err).NotTo(HaveOccurred())

		env := dispatcher.Last()
		Expect(env.Type).To(Equal(llm.RequestImage))
		Expect(env.Prompt).To(Equal("um gato azul"))
	})

	It("waits for the prompt after a bare /image", func() {
		_, err := session.Execute(ctx, "/image")
		Expect(err).NotTo(HaveOccurred())
		Expect(dispatcher.sent).To(BeEmpty())
		Expect(session.Widget.Session().Pending().Mode).To(Equal(classifier.ModeAwaitingImagePrompt))
	})

	It("runs welcome features by number", func() {
		_, err := session.Execute(ctx, "/feature 2")
		Expect(err).NotTo(HaveOccurred())

		env := dispatcher.Last()
		Expect(env.Type).To(Equal(llm.RequestChat))
		Expect(env.SystemMessage).To(Equal(classifier.DefaultRules().Personas[0].SystemPrompt))
	})

	It("rejects features out of range", func() {
		_, err := session.Execute(ctx, "/feature 9")
		Expect(err).To(HaveOccurred())
	})

	It("attaches a local image for editing", func() {
		path := filepath.Join(tmpDir, "foto.png")
		Expect(os.WriteFile(path, pngBytes(), 0o644)).To(Succeed())

		_, err := session.Execute(ctx, "/edit "+path)
		Expect(err).NotTo(HaveOccurred())
		Expect(session.Widget.Session().Pending().Mode).To(Equal(classifier.ModeAwaitingEditPrompt))

		dispatcher.reply = llm.ImageResponse("https://x/edited.png")
		_, err = session.Execute(ctx, "remover o fundo")
		Expect(err).NotTo(HaveOccurred())

		env := dispatcher.Last()
		Expect(env.Type).To(Equal(llm.RequestImageEdit))
		Expect(env.Prompt).To(Equal("remover o fundo"))
		Expect(env.Image).To(HavePrefix("data:image/png;base64,"))
	})

	It("fails to attach a missing file", func() {
		_, err := session.Execute(ctx, "/edit "+filepath.Join(tmpDir, "nope.png"))
		Expect(err).To(HaveOccurred())
	})

	It("copies the newest code block", func() {
		dispatcher.reply = llm.TextResponse("veja:\n```go\nfmt.Println(1)\n```")
		_, err := session.Execute(ctx, "programar um exemplo")
		Expect(err).NotTo(HaveOccurred())

		outcome, err := session.Execute(ctx, "/copy")
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Copied).To(BeTrue())
		Expect(clipboard).To(Equal([]string{"fmt.Println(1)"}))

		blocks := session.Widget.View().Blocks()
		Expect(blocks[len(blocks)-1].Copy.Label()).To(Equal(render.CopiedLabel))
	})

	It("reports when there is nothing to copy", func() {
		outcome, err := session.Execute(ctx, "/copy")
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Notice).NotTo(BeEmpty())
		Expect(clipboard).To(BeEmpty())
	})

	It("saves the newest generated image", func() {
		data := pngBytes()
		dispatcher.reply = llm.ImageResponse(imagedata.PNGDataURL(data))
		_, err := session.Execute(ctx, "criar imagem um farol")
		Expect(err).NotTo(HaveOccurred())

		outcome, err := session.Execute(ctx, "/save")
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Notice).To(ContainSubstring(render.DefaultDownloadName))

		saved, err := os.ReadFile(filepath.Join(tmpDir, render.DefaultDownloadName))
		Expect(err).NotTo(HaveOccurred())
		Expect(saved).To(Equal(data))
	})

	It("starts a new conversation", func() {
		_, err := session.Execute(ctx, "oi")
		Expect(err).NotTo(HaveOccurred())

		_, err = session.Execute(ctx, "/new")
		Expect(err).NotTo(HaveOccurred())
		Expect(session.Widget.Session().History()).To(BeEmpty())
		Expect(session.Widget.View().Welcome()).To(BeTrue())
	})

	It("quits", func() {
		outcome, err := session.Execute(ctx, "/quit")
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Quit).To(BeTrue())
	})

	Describe("RunLines", func() {
		It("prints each new block once and stops at /quit", func() {
			var out bytes.Buffer
			in := strings.NewReader("oi\n/quit\nnever sent\n")

			err := tui.RunLines(ctx, session, tui.NewFormatter(80, false), in, &out)
			Expect(err).NotTo(HaveOccurred())

			Expect(strings.Count(out.String(), "Claro!")).To(Equal(1))
			Expect(out.String()).To(ContainSubstring("oi"))
			Expect(dispatcher.sent).To(HaveLen(1))
		})

		It("prints the welcome content again after /new", func() {
			var out bytes.Buffer
			in := strings.NewReader("oi\n/new\n")

			Expect(tui.RunLines(ctx, session, tui.NewFormatter(80, false), in, &out)).To(Succeed())
			Expect(strings.Count(out.String(), tui.Features[1])).To(Equal(2))
		})
	})
})
