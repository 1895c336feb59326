package castree

import (
	"context"
	"fmt"

	"github.com/castree/castree/store"
)

// Walk visits every object reachable from rootID exactly once.
//
// Traversal is depth-first in name order, with each tree visited before the
// objects it references, so the sequence is deterministic for a given
// snapshot. fn receives the object's ID and the entry type it was reached
// through (the root is a tree). Returning an error from fn stops the walk.
//
// Replication and retention tooling use Walk to enumerate the closure of a
// snapshot.
func Walk(ctx context.Context, st store.Store, rootID ObjectID, fn func(id ObjectID, typ TreeEntryType) error) error {
	seen := make(map[ObjectID]struct{})

	var walkTree func(id ObjectID) error
	walkTree = func(id ObjectID) error {
		if _, ok := seen[id]; ok {
			return nil
		}
		seen[id] = struct{}{}

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(id, EntryTypeTree); err != nil {
			return err
		}

		dgst, err := DigestFromID(id)
		if err != nil {
			return err
		}
		encoded, err := st.Get(ctx, dgst)
		if err != nil {
			return fmt.Errorf("fetch tree %s: %w", id, err)
		}
		tree, err := DecodeTree(encoded)
		if err != nil {
			return fmt.Errorf("decode tree %s: %w", id, err)
		}

		for entry := range tree.Entries() {
			if entry.Type() == EntryTypeTree {
				if err := walkTree(entry.ID()); err != nil {
					return err
				}
				continue
			}
			if _, ok := seen[entry.ID()]; ok {
				continue
			}
			seen[entry.ID()] = struct{}{}
			if err := fn(entry.ID(), entry.Type()); err != nil {
				return err
			}
		}
		return nil
	}

	return walkTree(rootID)
}
