package transcript_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragchat/pkg/transcript"
)

func storeBehaves(name string, open func() transcript.Store) {
	Describe(name, func() {
		var (
			store transcript.Store
			ctx   context.Context
		)

		BeforeEach(func() {
			ctx = context.Background()
			store = open()
		})

		AfterEach(func() {
			Expect(store.Close()).To(Succeed())
		})

		It("stores and retrieves a node", func() {
			node := transcript.NewNode(transcript.Entry{Role: "user", Text: "halo", Endpoint: "/api/chat"}, nil)

			isNew, err := store.Put(ctx, node)
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeTrue())

			got, err := store.Get(ctx, node.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Hash).To(Equal(node.Hash))
			Expect(got.Entry).To(Equal(node.Entry))
			Expect(got.ParentHash).To(BeNil())
		})

		It("deduplicates by hash", func() {
			node := transcript.NewNode(transcript.Entry{Role: "user", Text: "dup"}, nil)

			_, err := store.Put(ctx, node)
			Expect(err).NotTo(HaveOccurred())
			isNew, err := store.Put(ctx, node)
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeFalse())

			nodes, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(nodes).To(HaveLen(1))
		})

		It("returns ErrNotFound for unknown hashes", func() {
			_, err := store.Get(ctx, "missing")
			Expect(err).To(MatchError(transcript.ErrNotFound{Hash: "missing"}))
		})

		It("reports leaves and ancestry of branching conversations", func() {
			root := transcript.NewNode(transcript.Entry{Role: "user", Text: "q"}, nil)
			a := transcript.NewNode(transcript.Entry{Role: "assistant", Text: "a"}, root)
			b := transcript.NewNode(transcript.Entry{Role: "assistant", Text: "b"}, root)
			for _, n := range []*transcript.Node{root, a, b} {
				_, err := store.Put(ctx, n)
				Expect(err).NotTo(HaveOccurred())
			}

			leaves, err := store.Leaves(ctx)
			Expect(err).NotTo(HaveOccurred())
			hashes := []string{}
			for _, l := range leaves {
				hashes = append(hashes, l.Hash)
			}
			Expect(hashes).To(ConsistOf(a.Hash, b.Hash))

			chain, err := transcript.Ancestry(ctx, store, b.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(chain).To(HaveLen(2))
			Expect(chain[0].Hash).To(Equal(root.Hash))
			Expect(chain[1].Hash).To(Equal(b.Hash))
		})
	})
}

var _ = Describe("Stores", func() {
	storeBehaves("MemoryStore", func() transcript.Store {
		return transcript.NewMemoryStore()
	})

	storeBehaves("SQLiteStore", func() transcript.Store {
		s, err := transcript.NewSQLiteStore(":memory:")
		Expect(err).NotTo(HaveOccurred())
		return s
	})

	It("creates the SQLite database file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "transcripts.db")
		s, err := transcript.NewSQLiteStore(path)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		_, err = os.Stat(path)
		Expect(err).NotTo(HaveOccurred())
	})
})
