package mcpcmder

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MCP Command", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "ragchat-mcp-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	writeFile := func(name, body string) string {
		path := filepath.Join(tmpDir, name)
		Expect(os.WriteFile(path, []byte(body), 0o644)).To(Succeed())
		return path
	}

	It("rejects an invalid config file", func() {
		path := writeFile("ragchat.toml", "[model]\nprovider = \"carrier-pigeon\"\n")

		cmder := &mcpCommander{configPath: path}
		err := cmder.run(context.Background(), &mcp.StdioTransport{})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid config"))
	})

	It("serves the configured documents to a connected client", func() {
		data := writeFile("data.json", `[{"state": "Jawa Barat", "capital_city": "Bandung"}]`)
		path := writeFile("ragchat.toml", `
[model]
provider = "groq"

[documents]
path = "`+data+`"
fields = ["/state", "/capital_city"]
`)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		serverTransport, clientTransport := mcp.NewInMemoryTransports()
		done := make(chan error, 1)
		go func() {
			cmder := &mcpCommander{configPath: path}
			done <- cmder.run(ctx, serverTransport)
		}()

		client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
		cs, err := client.Connect(ctx, clientTransport, nil)
		Expect(err).NotTo(HaveOccurred())

		res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "document_context", Arguments: map[string]any{}})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.IsError).To(BeFalse())
		out, ok := res.StructuredContent.(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(out["count"]).To(BeNumerically("==", 1))
		Expect(out["context"]).To(ContainSubstring(`"capital_city": "Bandung"`))

		Expect(cs.Close()).To(Succeed())
		cancel()
		Eventually(done, 5*time.Second).Should(Receive())
	})
})
