package transcript

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/ragchat/pkg/chat"
)

// Recorder turns completed exchanges into node chains.
type Recorder struct {
	store  Store
	logger *zap.Logger
}

func NewRecorder(store Store, logger *zap.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Store returns the backing store.
func (r *Recorder) Store() Store {
	return r.store
}

// Record stores every turn of the request followed by the assistant reply and
// returns the hash of the reply node.
func (r *Recorder) Record(ctx context.Context, endpoint, model string, turns []chat.Turn, reply string) (string, error) {
	var parent *Node
	created := 0

	for _, t := range turns {
		node := NewNode(Entry{Role: t.Role, Text: t.Text, Endpoint: endpoint}, parent)
		isNew, err := r.store.Put(ctx, node)
		if err != nil {
			return "", fmt.Errorf("store turn: %w", err)
		}
		if isNew {
			created++
		}
		parent = node
	}

	head := NewNode(Entry{Role: "assistant", Text: reply, Model: model, Endpoint: endpoint}, parent)
	isNew, err := r.store.Put(ctx, head)
	if err != nil {
		return "", fmt.Errorf("store reply: %w", err)
	}
	if isNew {
		created++
	}

	r.logger.Debug("transcript recorded",
		zap.String("head_hash", truncate(head.Hash, 16)),
		zap.Int("new_nodes", created),
	)
	return head.Hash, nil
}

// History is a conversation reconstructed from its last node.
type History struct {
	HeadHash string  `json:"head_hash"`
	Depth    int     `json:"depth"`
	Nodes    []*Node `json:"nodes"`
}

// History loads the conversation ending at hash.
func (r *Recorder) History(ctx context.Context, hash string) (*History, error) {
	nodes, err := Ancestry(ctx, r.store, hash)
	if err != nil {
		return nil, err
	}
	return &History{HeadHash: hash, Depth: len(nodes), Nodes: nodes}, nil
}

// Histories loads every recorded conversation, one per leaf.
func (r *Recorder) Histories(ctx context.Context) ([]*History, error) {
	leaves, err := r.store.Leaves(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*History, 0, len(leaves))
	for _, leaf := range leaves {
		h, err := r.History(ctx, leaf.Hash)
		if err != nil {
			r.logger.Warn("failed to build history for leaf", zap.String("hash", leaf.Hash), zap.Error(err))
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
