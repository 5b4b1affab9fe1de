package classifier_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatgate/pkg/classifier"
	"github.com/papercomputeco/chatgate/pkg/llm"
)

var _ = Describe("Classify", func() {
	var rules classifier.Rules

	BeforeEach(func() {
		rules = classifier.DefaultRules()
	})

	Context("when the input starts with the image trigger", func() {
		DescribeTable("produces an image envelope with the remainder as prompt",
			func(input, prompt string) {
				env, next, err := classifier.Classify(rules, input, classifier.Pending{}, nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(env.Type).To(Equal(llm.RequestImage))
				Expect(env.Prompt).To(Equal(prompt))
				Expect(next.Mode).To(Equal(classifier.ModeNone))
			},
			Entry("lower case", "criar imagem um gato azul", "um gato azul"),
			Entry("mixed case", "Criar Imagem de um barco", "de um barco"),
			Entry("upper case with padding", "  CRIAR IMAGEM    pôr do sol  ", "pôr do sol"),
			Entry("trigger only", "criar imagem", ""),
		)

		It("wins over a pending image prompt", func() {
			env, _, err := classifier.Classify(rules, "criar imagem uma casa",
				classifier.Pending{Mode: classifier.ModeAwaitingImagePrompt}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(env.Prompt).To(Equal("uma casa"))
		})
	})

	Context("when awaiting an image prompt", func() {
		It("treats raw text as the description and clears the mode", func() {
			env, next, err := classifier.Classify(rules, "um dragão verde",
				classifier.Pending{Mode: classifier.ModeAwaitingImagePrompt}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(env.Type).To(Equal(llm.RequestImage))
			Expect(env.Prompt).To(Equal("um dragão verde"))
			Expect(next).To(Equal(classifier.Pending{}))
		})
	})

	Context("when awaiting an edit prompt", func() {
		It("produces an image-edit envelope carrying the held image", func() {
			pending := classifier.Pending{Mode: classifier.ModeAwaitingEditPrompt, EditSubject: "data:image/png;base64,AAAA"}
			env, next, err := classifier.Classify(rules, "remove background", pending, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(env.Type).To(Equal(llm.RequestImageEdit))
			Expect(env.Prompt).To(Equal("remove background"))
			Expect(env.Image).To(Equal("data:image/png;base64,AAAA"))
			Expect(next).To(Equal(classifier.Pending{}))
		})

		It("takes precedence over the image trigger", func() {
			pending := classifier.Pending{Mode: classifier.ModeAwaitingEditPrompt, EditSubject: "img"}
			env, _, err := classifier.Classify(rules, "criar imagem com chapéu", pending, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(env.Type).To(Equal(llm.RequestImageEdit))
			Expect(env.Prompt).To(Equal("criar imagem com chapéu"))
		})
	})

	Context("when the input is a chat message", func() {
		DescribeTable("selects the persona by prefix",
			func(input, prompt string) {
				env, _, err := classifier.Classify(rules, input, classifier.Pending{}, nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(env.Type).To(Equal(llm.RequestChat))
				Expect(env.SystemMessage).To(Equal(prompt))
			},
			Entry("programming", "Programar uma API em Go", classifier.DefaultRules().Personas[0].SystemPrompt),
			Entry("writing", "ajudar a escrever um email", classifier.DefaultRules().Personas[1].SystemPrompt),
			Entry("summarizing", "RESUMIR TEXTO: ...", classifier.DefaultRules().Personas[2].SystemPrompt),
			Entry("advice", "aconselhar sobre carreira", classifier.DefaultRules().Personas[3].SystemPrompt),
			Entry("default", "olá, tudo bem?", classifier.DefaultPersona),
			Entry("trigger not at the start", "quero programar", classifier.DefaultPersona),
		)

		It("uses the first matching persona in table order", func() {
			rules.Personas = []classifier.Persona{
				{Trigger: "code", SystemPrompt: "first"},
				{Trigger: "code review", SystemPrompt: "second"},
			}
			env, _, err := classifier.Classify(rules, "code review this", classifier.Pending{}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(env.SystemMessage).To(Equal("first"))
		})

		It("sends the history followed by the new user turn", func() {
			history := []llm.Message{llm.UserTurn("oi"), llm.AssistantTurn("olá!")}
			env, _, err := classifier.Classify(rules, "como vai?", classifier.Pending{}, history)
			Expect(err).NotTo(HaveOccurred())
			Expect(env.Messages).To(Equal([]llm.Message{
				llm.UserTurn("oi"),
				llm.AssistantTurn("olá!"),
				llm.UserTurn("como vai?"),
			}))
			Expect(history).To(HaveLen(2))
		})
	})

	It("rejects blank input without touching the pending state", func() {
		pending := classifier.Pending{Mode: classifier.ModeAwaitingImagePrompt}
		_, next, err := classifier.Classify(rules, " \t\n", pending, nil)
		Expect(err).To(MatchError(classifier.ErrEmptyInput))
		Expect(next).To(Equal(pending))
	})
})

var _ = Describe("Session", func() {
	var session *classifier.Session

	BeforeEach(func() {
		session = classifier.NewSession(classifier.DefaultRules())
	})

	It("replays user and assistant turns in order", func() {
		_, err := session.Classify("olá")
		Expect(err).NotTo(HaveOccurred())
		session.RecordReply("Olá! Como posso ajudar?")

		env, err := session.Classify("me conte uma piada")
		Expect(err).NotTo(HaveOccurred())
		Expect(env.Messages).To(Equal([]llm.Message{
			{Role: llm.RoleUser, Content: "olá"},
			{Role: llm.RoleAssistant, Content: "Olá! Como posso ajudar?"},
			{Role: llm.RoleUser, Content: "me conte uma piada"},
		}))
	})

	It("records user text for image turns too", func() {
		env, err := session.Classify("criar imagem um farol")
		Expect(err).NotTo(HaveOccurred())
		Expect(env.Type).To(Equal(llm.RequestImage))
		Expect(session.History()).To(Equal([]llm.Message{llm.UserTurn("criar imagem um farol")}))
	})

	It("consumes the edit mode exactly once", func() {
		session.AwaitEditPrompt("data:image/png;base64,AAAA")
		Expect(session.Pending().Mode).To(Equal(classifier.ModeAwaitingEditPrompt))

		first, err := session.Classify("deixe em preto e branco")
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Type).To(Equal(llm.RequestImageEdit))
		Expect(session.Pending()).To(Equal(classifier.Pending{}))

		second, err := session.Classify("deixe em preto e branco")
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Type).To(Equal(llm.RequestChat))
	})

	It("replaces a previous pending mode", func() {
		session.AwaitEditPrompt("img")
		session.AwaitImagePrompt()
		Expect(session.Pending()).To(Equal(classifier.Pending{Mode: classifier.ModeAwaitingImagePrompt}))
	})

	It("does not record blank input", func() {
		_, err := session.Classify("   ")
		Expect(err).To(MatchError(classifier.ErrEmptyInput))
		Expect(session.History()).To(BeEmpty())
	})

	It("returns history copies", func() {
		_, err := session.Classify("oi")
		Expect(err).NotTo(HaveOccurred())
		h := session.History()
		h[0].Content = "mutated"
		Expect(session.History()[0].Content).To(Equal("oi"))
	})

	It("clears everything on reset", func() {
		_, err := session.Classify("oi")
		Expect(err).NotTo(HaveOccurred())
		session.AwaitImagePrompt()
		session.Reset()
		Expect(session.History()).To(BeEmpty())
		Expect(session.Pending().Mode).To(Equal(classifier.ModeNone))
	})
})
