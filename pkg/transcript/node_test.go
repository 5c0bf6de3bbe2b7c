package transcript_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragchat/pkg/transcript"
)

var _ = Describe("Node", func() {
	user := transcript.Entry{Role: "user", Text: "halo"}

	It("hashes identical entries identically", func() {
		Expect(transcript.NewNode(user, nil).Hash).To(Equal(transcript.NewNode(user, nil).Hash))
	})

	It("hashes different text differently", func() {
		other := transcript.Entry{Role: "user", Text: "hai"}
		Expect(transcript.NewNode(user, nil).Hash).NotTo(Equal(transcript.NewNode(other, nil).Hash))
	})

	It("leaves root nodes without a parent", func() {
		Expect(transcript.NewNode(user, nil).ParentHash).To(BeNil())
	})

	It("links children to their parent and mixes the parent into the hash", func() {
		root := transcript.NewNode(user, nil)
		otherRoot := transcript.NewNode(transcript.Entry{Role: "user", Text: "other"}, nil)
		reply := transcript.Entry{Role: "assistant", Text: "yo"}

		child := transcript.NewNode(reply, root)
		Expect(child.ParentHash).NotTo(BeNil())
		Expect(*child.ParentHash).To(Equal(root.Hash))
		Expect(child.Hash).NotTo(Equal(transcript.NewNode(reply, otherRoot).Hash))
		Expect(child.Hash).NotTo(Equal(transcript.NewNode(reply, nil).Hash))
	})

	It("produces a 64 character hex hash", func() {
		Expect(transcript.NewNode(user, nil).Hash).To(MatchRegexp("^[0-9a-f]{64}$"))
	})
})
