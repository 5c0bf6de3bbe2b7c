package promptcmder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const request = `{"messages":[
	{"role":"user","parts":[{"type":"text","text":"Hi"}]},
	{"role":"assistant","parts":[{"type":"text","text":"Hello!"}]},
	{"role":"user","parts":[{"type":"text","text":"Where is Bandung?"}]}]}`

var _ = Describe("Prompt Command", func() {
	var (
		ctx    context.Context
		tmpDir string
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		tmpDir, err = os.MkdirTemp("", "ragchat-prompt-test-*")
		Expect(err).NotTo(HaveOccurred())
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	execute := func(stdin string, args ...string) error {
		cmd := NewPromptCmd()
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetOut(stdout)
		cmd.SetErr(stderr)
		cmd.SetArgs(args)
		return cmd.ExecuteContext(ctx)
	}

	It("renders the chat prompt from stdin", func() {
		Expect(execute(request)).To(Succeed())

		out := stdout.String()
		Expect(out).To(ContainSubstring("You are a madman"))
		Expect(out).To(ContainSubstring("user: Hi\nassistant: Hello!"))
		Expect(out).To(ContainSubstring("user: Where is Bandung?"))
	})

	It("renders the RAG prompt with every document", func() {
		docsPath := filepath.Join(tmpDir, "data.json")
		Expect(os.WriteFile(docsPath, []byte(`[
			{"state": "Jawa Barat", "capital_city": "Bandung", "secret": "x"},
			{"state": "Bali", "capital_city": "Denpasar"}
		]`), 0o644)).To(Succeed())

		reqPath := filepath.Join(tmpDir, "request.json")
		Expect(os.WriteFile(reqPath, []byte(request), 0o644)).To(Succeed())

		Expect(execute("", "--endpoint", "chat-rag", "--documents", docsPath, reqPath)).To(Succeed())

		out := stdout.String()
		Expect(out).To(ContainSubstring("Document 1:\n{\n  \"state\": \"Jawa Barat\",\n  \"capital_city\": \"Bandung\"\n}"))
		Expect(out).To(ContainSubstring("Document 2:"))
		Expect(out).NotTo(ContainSubstring("secret"))
		Expect(out).To(ContainSubstring("User: Where is Bandung?"))
		Expect(stderr.String()).To(ContainSubstring("2 documents in context"))
	})

	It("fails on an unknown endpoint", func() {
		err := execute(request, "--endpoint", "/api/nope")
		Expect(err).To(MatchError(ContainSubstring("unknown endpoint")))
	})

	It("fails on a malformed body", func() {
		err := execute("{broken")
		Expect(err).To(MatchError(ContainSubstring("could not render prompt")))
	})

	It("fails when the document collection is missing", func() {
		err := execute(request, "--endpoint", "/api/chat-rag", "--documents", filepath.Join(tmpDir, "none.json"))
		Expect(err).To(HaveOccurred())
	})
})
