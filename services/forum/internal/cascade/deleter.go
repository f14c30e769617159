// Package cascade removes a comment together with every transitive reply.
package cascade

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Store is the slice of the comment store the deleter needs.
type Store interface {
	ListChildrenIDs(ctx context.Context, parentID string) ([]string, error)
	DeleteMany(ctx context.Context, ids []string) error
}

type Deleter struct {
	store Store
	log   *zap.Logger
}

func NewDeleter(s Store, log *zap.Logger) *Deleter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Deleter{store: s, log: log}
}

// DeleteTree walks the reply tree under rootID breadth first and removes the
// root and all descendants with a single DeleteMany. It returns the deleted
// ids in discovery order. A missing root still results in a DeleteMany of
// just rootID, which the store treats as a no-op.
//
// Replies inserted after their parent level has been read survive as orphans.
func (d *Deleter) DeleteTree(ctx context.Context, rootID string) ([]string, error) {
	toDelete := []string{rootID}
	seen := map[string]struct{}{rootID: {}}
	queue := []string{rootID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children, err := d.store.ListChildrenIDs(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("list replies of %s: %w", current, err)
		}
		for _, id := range children {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			toDelete = append(toDelete, id)
			queue = append(queue, id)
		}
	}

	if err := d.store.DeleteMany(ctx, toDelete); err != nil {
		return nil, fmt.Errorf("delete comment tree %s: %w", rootID, err)
	}
	d.log.Debug("comment tree deleted", zap.String("root_id", rootID), zap.Int("count", len(toDelete)))
	return toDelete, nil
}
