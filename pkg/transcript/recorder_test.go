package transcript_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/ragchat/pkg/chat"
	"github.com/papercomputeco/ragchat/pkg/transcript"
)

var _ = Describe("Recorder", func() {
	var (
		ctx      context.Context
		store    *transcript.MemoryStore
		recorder *transcript.Recorder
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = transcript.NewMemoryStore()
		recorder = transcript.NewRecorder(store, zap.NewNop())
	})

	turns := []chat.Turn{
		{Role: "user", Text: "Hi"},
		{Role: "assistant", Text: "Hello!"},
		{Role: "user", Text: "Who are you?"},
	}

	It("records every turn and the reply as one chain", func() {
		head, err := recorder.Record(ctx, "/api/chat", "llama-3.1-8b-instant", turns, "A madman!")
		Expect(err).NotTo(HaveOccurred())

		history, err := recorder.History(ctx, head)
		Expect(err).NotTo(HaveOccurred())
		Expect(history.Depth).To(Equal(4))
		Expect(history.Nodes[0].Entry.Text).To(Equal("Hi"))
		Expect(history.Nodes[3].Entry).To(Equal(transcript.Entry{
			Role: "assistant", Text: "A madman!", Model: "llama-3.1-8b-instant", Endpoint: "/api/chat",
		}))
	})

	It("shares the common prefix between replies", func() {
		_, err := recorder.Record(ctx, "/api/chat", "m", turns, "one")
		Expect(err).NotTo(HaveOccurred())
		_, err = recorder.Record(ctx, "/api/chat", "m", turns, "two")
		Expect(err).NotTo(HaveOccurred())

		nodes, err := store.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(nodes).To(HaveLen(5))

		histories, err := recorder.Histories(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(histories).To(HaveLen(2))
	})

	It("records a reply to an empty conversation as a root", func() {
		head, err := recorder.Record(ctx, "/api/chat-ui", "m", nil, "?")
		Expect(err).NotTo(HaveOccurred())

		node, err := store.Get(ctx, head)
		Expect(err).NotTo(HaveOccurred())
		Expect(node.ParentHash).To(BeNil())
	})
})
