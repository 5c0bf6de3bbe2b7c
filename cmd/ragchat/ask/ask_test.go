package askcmder

import (
	"bytes"
	"context"
	"errors"
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/ragchat/pkg/llm"
	"github.com/papercomputeco/ragchat/pkg/llm/llmtest"
	"github.com/papercomputeco/ragchat/server"
)

var _ = Describe("Ask Command", func() {
	var (
		ctx    context.Context
		stdout *bytes.Buffer
	)

	BeforeEach(func() {
		ctx = context.Background()
		stdout = &bytes.Buffer{}
	})

	startServer := func(client *llmtest.Client) (string, func()) {
		srv, err := server.New(server.Options{
			Config: server.Config{ListenAddr: ":0"},
			Client: client,
			Logger: zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		go func() {
			_ = srv.RunWithListener(listener)
		}()

		addr := "http://" + listener.Addr().String()
		cleanup := func() {
			_ = srv.Shutdown(context.Background())
		}
		return addr, cleanup
	}

	execute := func(args ...string) error {
		cmd := NewAskCmd()
		cmd.SetOut(stdout)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		return cmd.ExecuteContext(ctx)
	}

	It("prints a data stream answer", func() {
		client := &llmtest.Client{Script: &llmtest.Stream{Chunks: []string{"The sky ", "scatters ", "blue light."}}}
		addr, cleanup := startServer(client)
		defer cleanup()

		Expect(execute(addr, "Why is the sky blue?")).To(Succeed())
		Expect(stdout.String()).To(Equal("The sky scatters blue light.\n"))

		reqs := client.Requests()
		Expect(reqs).To(HaveLen(1))
		Expect(reqs[0].Messages[0].Content).To(ContainSubstring("user: Why is the sky blue?"))
	})

	It("prints a UI message stream answer", func() {
		client := &llmtest.Client{Script: &llmtest.Stream{Chunks: []string{"Halo", " bro"}}}
		addr, cleanup := startServer(client)
		defer cleanup()

		Expect(execute("--endpoint", "/api/chat-ui", addr+"/", "Halo?")).To(Succeed())
		Expect(stdout.String()).To(Equal("Halo bro\n"))
	})

	It("reports a server side failure before streaming", func() {
		client := &llmtest.Client{OpenErr: &llm.Error{Provider: "groq", Kind: llm.KindRateLimit, Status: 429, Err: errors.New("slow down")}}
		addr, cleanup := startServer(client)
		defer cleanup()

		err := execute(addr, "Hi")
		Expect(err).To(MatchError(ContainSubstring("server returned 500")))
		Expect(err.Error()).To(ContainSubstring("slow down"))
		Expect(stdout.String()).To(BeEmpty())
	})

	It("reports a mid-stream failure", func() {
		client := &llmtest.Client{Script: &llmtest.Stream{Chunks: []string{"part"}, Err: errors.New("upstream reset")}}
		addr, cleanup := startServer(client)
		defer cleanup()

		err := execute(addr, "Hi")
		Expect(err).To(MatchError(ContainSubstring("upstream reset")))
		Expect(stdout.String()).To(Equal("part\n"))
	})

	It("fails when the server is unreachable", func() {
		err := execute("http://127.0.0.1:1", "Hi")
		Expect(err).To(MatchError(ContainSubstring("HTTP request failed")))
	})
})
