package servecmder

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/ragchat/pkg/llm/llmtest"
	"github.com/papercomputeco/ragchat/server"
)

var _ = Describe("Serve Command", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "ragchat-serve-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	writeConfig := func(body string) string {
		path := filepath.Join(tmpDir, "ragchat.toml")
		Expect(os.WriteFile(path, []byte(body), 0o644)).To(Succeed())
		return path
	}

	It("rejects an invalid config file", func() {
		path := writeConfig("[model]\nprovider = \"carrier-pigeon\"\n")

		cmd := NewServeCmd()
		cmd.SetArgs([]string{"--config", path, "--env-file", ""})
		err := cmd.ExecuteContext(context.Background())
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid config"))
	})

	It("fails before listening when cached documents cannot be loaded", func() {
		path := writeConfig(`
[model]
provider = "groq"

[documents]
path = "` + filepath.Join(tmpDir, "missing.json") + `"
cache = true
`)
		cmder := &serveCommander{configPath: path}
		err := cmder.run(context.Background())
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("could not load documents"))
	})

	It("serves until the context is cancelled", func() {
		srv, err := server.New(server.Options{
			Client: &llmtest.Client{},
			Logger: zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- serve(ctx, srv, ln, zap.NewNop())
		}()

		Eventually(func() int {
			resp, err := http.Get("http://" + ln.Addr().String() + "/health")
			if err != nil {
				return 0
			}
			resp.Body.Close()
			return resp.StatusCode
		}, 5*time.Second, 50*time.Millisecond).Should(Equal(http.StatusOK))

		cancel()
		Eventually(done, 15*time.Second).Should(Receive(BeNil()))
	})
})
