package mergecmder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/ragchat/pkg/chat"
	"github.com/papercomputeco/ragchat/pkg/transcript"
)

var _ = Describe("Merge Command", func() {
	var (
		ctx     context.Context
		tmpDir  string
		stdout  *bytes.Buffer
		dstPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		tmpDir, err = os.MkdirTemp("", "ragchat-merge-test-*")
		Expect(err).NotTo(HaveOccurred())
		dstPath = filepath.Join(tmpDir, "target.db")
		stdout = &bytes.Buffer{}
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	// seed records one exchange into a fresh database.
	seed := func(name string, turns []chat.Turn, reply string) string {
		path := filepath.Join(tmpDir, name)
		store, err := transcript.NewSQLiteStore(path)
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		_, err = transcript.NewRecorder(store, zap.NewNop()).Record(ctx, "/api/chat", "test-model", turns, reply)
		Expect(err).NotTo(HaveOccurred())
		return path
	}

	execute := func(args ...string) error {
		cmd := NewMergeCmd()
		cmd.SetOut(stdout)
		cmd.SetArgs(append([]string{"--target", dstPath}, args...))
		return cmd.ExecuteContext(ctx)
	}

	It("merges every node from the sources", func() {
		a := seed("a.db", []chat.Turn{{Role: "user", Text: "hello"}}, "hi there")
		b := seed("b.db", []chat.Turn{{Role: "user", Text: "who are you?"}}, "a madman")

		Expect(execute(a, b)).To(Succeed())

		target, err := transcript.NewSQLiteStore(dstPath)
		Expect(err).NotTo(HaveOccurred())
		defer target.Close()

		nodes, err := target.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(nodes).To(HaveLen(4))

		leaves, err := target.Leaves(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(leaves).To(HaveLen(2))
		Expect(stdout.String()).To(ContainSubstring("4 nodes added, 0 skipped"))
	})

	It("shares common conversation prefixes", func() {
		a := seed("a.db", []chat.Turn{{Role: "user", Text: "hello"}}, "hi there")
		b := seed("b.db", []chat.Turn{{Role: "user", Text: "hello"}}, "good day")

		Expect(execute(a, b)).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("3 nodes added, 1 skipped"))
	})

	It("is idempotent", func() {
		a := seed("a.db", []chat.Turn{{Role: "user", Text: "hello"}}, "hi there")

		Expect(execute(a)).To(Succeed())
		stdout.Reset()
		Expect(execute(a)).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("0 nodes added, 2 skipped"))
	})
})
