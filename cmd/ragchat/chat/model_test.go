package chatcmder

import (
	"bytes"
	"context"
	"errors"
	"net"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/ragchat/pkg/client"
	"github.com/papercomputeco/ragchat/pkg/llm"
	"github.com/papercomputeco/ragchat/pkg/llm/llmtest"
	"github.com/papercomputeco/ragchat/pkg/termui"
	"github.com/papercomputeco/ragchat/server"
)

var _ = Describe("Chat Model", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		fake   *llmtest.Client
		m      model
	)

	startServer := func() string {
		srv, err := server.New(server.Options{Client: fake, Logger: zap.NewNop()})
		Expect(err).NotTo(HaveOccurred())

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		go func() {
			_ = srv.RunWithListener(listener)
		}()
		DeferCleanup(func() {
			_ = srv.Shutdown(context.Background())
		})
		return "http://" + listener.Addr().String()
	}

	update := func(msg tea.Msg) tea.Cmd {
		next, cmd := m.Update(msg)
		m = next.(model)
		return cmd
	}

	// ask submits text and feeds every message of the exchange back into the
	// model until the reply is done.
	ask := func(text string) {
		m.input.SetValue(text)
		update(tea.KeyMsg{Type: tea.KeyEnter})
		Expect(m.streaming).To(BeTrue())

		stream := m.stream
		for {
			msg := <-stream
			update(msg)
			if _, done := msg.(replyDoneMsg); done {
				return
			}
		}
	}

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(cancel)
		fake = &llmtest.Client{}
	})

	JustBeforeEach(func() {
		c := client.New(startServer(), nil)
		m = newModel(ctx, c, "/api/chat", "notty", termui.NewStyles(&bytes.Buffer{}, false))
	})

	Context("with a streaming model", func() {
		BeforeEach(func() {
			fake.Script = &llmtest.Stream{Chunks: []string{"Hello", " there"}}
		})

		It("streams the reply into the conversation", func() {
			ask("Hi")

			Expect(m.streaming).To(BeFalse())
			Expect(m.messages).To(HaveLen(2))
			Expect(m.messages[1].Role).To(Equal("assistant"))
			Expect(m.entries).To(Equal([]entry{
				{role: "user", text: "Hi"},
				{role: "assistant", text: "Hello there"},
			}))
			Expect(m.render()).To(ContainSubstring("Hello there"))
			Expect(m.input.Value()).To(BeEmpty())
		})
	})

	It("sends the conversation so far with every question", func() {
		ask("Hi")
		ask("Who are you?")

		reqs := fake.Requests()
		Expect(reqs).To(HaveLen(2))
		Expect(reqs[1].Messages[0].Content).To(ContainSubstring("user: Hi\nassistant: "))
		Expect(reqs[1].Messages[0].Content).To(ContainSubstring("user: Who are you?"))
	})

	Context("when the model fails", func() {
		BeforeEach(func() {
			fake.OpenErr = &llm.Error{Provider: "groq", Kind: llm.KindAuth, Status: 401, Err: errors.New("bad key")}
		})

		It("shows the error and forgets the question", func() {
			ask("Hi")

			Expect(m.messages).To(BeEmpty())
			Expect(m.entries).To(HaveLen(2))
			Expect(m.entries[1].role).To(Equal("error"))
			Expect(m.entries[1].text).To(ContainSubstring("bad key"))
		})
	})

	It("ignores empty input", func() {
		m.input.SetValue("   ")
		Expect(update(tea.KeyMsg{Type: tea.KeyEnter})).To(BeNil())
		Expect(m.streaming).To(BeFalse())
		Expect(fake.Requests()).To(BeEmpty())
	})

	It("quits on escape", func() {
		cmd := update(tea.KeyMsg{Type: tea.KeyEsc})
		Expect(cmd).NotTo(BeNil())
		Expect(cmd()).To(Equal(tea.QuitMsg{}))
	})

	It("resizes the viewport to the window", func() {
		update(tea.WindowSizeMsg{Width: 120, Height: 40})
		Expect(m.viewport.Width).To(Equal(120))
		Expect(m.viewport.Height).To(Equal(40 - inputHeight))
	})
})
