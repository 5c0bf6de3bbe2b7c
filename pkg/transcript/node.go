// Package transcript records completed chat exchanges as chains of
// content-addressed nodes. Each turn links to the turn before it, so identical
// conversation prefixes share nodes and a new reply branches off the shared
// history.
package transcript

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Entry is the hashed payload of a node.
type Entry struct {
	Role     string `json:"role"`
	Text     string `json:"text"`
	Model    string `json:"model,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// Node is one turn of a recorded conversation.
type Node struct {
	// Hash is the SHA-256 of the entry and parent hash, hex encoded.
	Hash string `json:"hash"`

	// ParentHash is nil for the first turn of a conversation.
	ParentHash *string `json:"parent_hash"`

	Entry Entry `json:"entry"`
}

type hashInput struct {
	Entry  Entry  `json:"entry"`
	Parent string `json:"parent,omitempty"`
}

// NewNode builds a node linked to parent, which may be nil.
func NewNode(entry Entry, parent *Node) *Node {
	n := &Node{Entry: entry}
	if parent != nil {
		h := parent.Hash
		n.ParentHash = &h
	}
	n.Hash = n.computeHash()
	return n
}

func (n *Node) computeHash() string {
	in := hashInput{Entry: n.Entry}
	if n.ParentHash != nil {
		in.Parent = *n.ParentHash
	}

	// Entry has only string fields, so marshalling cannot fail.
	data, _ := json.Marshal(in)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
