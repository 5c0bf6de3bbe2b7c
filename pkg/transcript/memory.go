package transcript

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps nodes in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	nodes    map[string]*Node
	children map[string]int
	order    []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:    make(map[string]*Node),
		children: make(map[string]int),
	}
}

func (s *MemoryStore) Put(_ context.Context, node *Node) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[node.Hash]; ok {
		return false, nil
	}
	s.nodes[node.Hash] = node
	s.order = append(s.order, node.Hash)
	if node.ParentHash != nil {
		s.children[*node.ParentHash]++
	}
	return true, nil
}

func (s *MemoryStore) Get(_ context.Context, hash string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[hash]
	if !ok {
		return nil, ErrNotFound{Hash: hash}
	}
	return node, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Node, 0, len(s.order))
	for _, h := range s.order {
		out = append(out, s.nodes[h])
	}
	return out, nil
}

func (s *MemoryStore) Leaves(ctx context.Context) ([]*Node, error) {
	all, _ := s.List(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var leaves []*Node
	for _, n := range all {
		if s.children[n.Hash] == 0 {
			leaves = append(leaves, n)
		}
	}
	sort.SliceStable(leaves, func(i, j int) bool { return leaves[i].Hash < leaves[j].Hash })
	return leaves, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
