package transcript

import "context"

// Store persists transcript nodes. Put is idempotent: storing a node whose hash
// already exists is a no-op that reports isNew=false.
type Store interface {
	Put(ctx context.Context, node *Node) (isNew bool, err error)

	// Get returns ErrNotFound when the hash is unknown.
	Get(ctx context.Context, hash string) (*Node, error)

	List(ctx context.Context) ([]*Node, error)

	// Leaves returns the last node of every recorded conversation.
	Leaves(ctx context.Context) ([]*Node, error)

	Close() error
}

// ErrNotFound is returned when a node doesn't exist in the store.
type ErrNotFound struct {
	Hash string
}

func (e ErrNotFound) Error() string {
	if e.Hash == "" {
		return "transcript node not found"
	}
	return "transcript node not found: " + e.Hash
}

// Ancestry walks from hash back to the first turn and returns the nodes in
// chronological order.
func Ancestry(ctx context.Context, s Store, hash string) ([]*Node, error) {
	var chain []*Node
	next := &hash
	for next != nil {
		node, err := s.Get(ctx, *next)
		if err != nil {
			return nil, err
		}
		chain = append(chain, node)
		next = node.ParentHash
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
