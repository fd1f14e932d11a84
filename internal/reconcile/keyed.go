package reconcile

import (
	"fmt"
	"sort"

	"github.com/loomui/loom/internal/vnode"
)

// patchKeyed reconciles a keyed list by key identity. Records move only
// when the relative order of keys common to both sides changed: the
// longest increasing subsequence of old positions (taken in new order)
// stays put, everything else moves or mounts in front of its right-hand
// neighbor. An order-preserving update therefore emits zero moves.
//
// Surface mutations happen in two phases. Placement runs right to left
// and only restructures (removes, moves, mounts); content patches run
// left to right afterwards, once every record sits at its final
// position.
func (r *Reconciler) patchKeyed(b *bList, n *vnode.List, base int) error {
	keep := make(map[string]bundle, len(b.items))
	oldPos := make(map[string]int, len(b.items))
	for i, it := range b.items {
		keep[it.key] = it.b
		oldPos[it.key] = i
	}
	nextKeys := make(map[string]struct{}, len(n.Items))
	for _, it := range n.Items {
		nextKeys[it.Key] = struct{}{}
	}

	// Removals first, so every later index is computed against a
	// region that only contains survivors.
	mirror := make([]bundle, 0, len(b.items))
	for _, it := range b.items {
		if _, survives := nextKeys[it.key]; !survives {
			if err := r.unmount(it.b, b.surfaceParent()); err != nil {
				return err
			}
			delete(keep, it.key)
			continue
		}
		mirror = append(mirror, it.b)
	}

	stay := r.staySet(n, oldPos)

	placed := make([]bundle, len(n.Items))
	fresh := make([]bool, len(n.Items))
	var anchor bundle

	for i := len(n.Items) - 1; i >= 0; i-- {
		item := n.Items[i]
		rec, kept := keep[item.Key]

		switch {
		case kept && stay[i]:
			// Already in position relative to everything placed so far.

		case kept:
			from := mirrorSlot(mirror, rec, base)
			mirror = mirrorRemove(mirror, rec)
			mirror = mirrorInsertBefore(mirror, rec, anchor)
			target := mirrorSlot(mirror, rec, base)
			if err := r.moveRecord(rec, b, from, target); err != nil {
				return err
			}

		default:
			target := base + regionSlots(mirror)
			if anchor != nil {
				target = mirrorSlot(mirror, anchor, base)
			}
			mounted, err := r.mount(item.Node, b, target)
			if err != nil {
				return err
			}
			mirror = mirrorInsertBefore(mirror, mounted, anchor)
			rec = mounted
			fresh[i] = true
		}

		placed[i] = rec
		anchor = rec
	}

	// Content pass: every record is at its final position, so the
	// cumulative slot index is stable left to right.
	items := make([]listItem, len(n.Items))
	cum := base
	for i, item := range n.Items {
		rec := placed[i]
		if !fresh[i] {
			patched, err := r.patch(rec, item.Node, b, cum)
			if err != nil {
				return err
			}
			patched.setParent(b)
			rec = patched
		}
		items[i] = listItem{key: item.Key, b: rec}
		cum += rec.slots()
	}
	b.items = items
	b.keyed = true
	return nil
}

// staySet returns, indexed by new position, whether the record keyed
// there is part of the longest increasing subsequence of old positions.
func (r *Reconciler) staySet(n *vnode.List, oldPos map[string]int) []bool {
	stay := make([]bool, len(n.Items))
	var seq []int   // old positions of common keys, in new order
	var newAt []int // new index of each seq entry
	for i, it := range n.Items {
		if p, ok := oldPos[it.Key]; ok {
			seq = append(seq, p)
			newAt = append(newAt, i)
		}
	}
	for _, k := range lis(seq) {
		stay[newAt[k]] = true
	}
	return stay
}

// lis returns the indices of one longest strictly increasing
// subsequence of seq, in ascending order.
func lis(seq []int) []int {
	if len(seq) == 0 {
		return nil
	}
	tails := make([]int, 0, len(seq)) // indices into seq
	prev := make([]int, len(seq))
	for i, v := range seq {
		j := sort.Search(len(tails), func(k int) bool { return seq[tails[k]] >= v })
		if j == 0 {
			prev[i] = -1
		} else {
			prev[i] = tails[j-1]
		}
		if j == len(tails) {
			tails = append(tails, i)
		} else {
			tails[j] = i
		}
	}
	out := make([]int, len(tails))
	for i, k := len(tails)-1, tails[len(tails)-1]; k >= 0; i, k = i-1, prev[k] {
		out[i] = k
	}
	return out
}

// moveRecord relocates every surface handle of rec so its first slot
// lands at target. Handle order within the record is preserved; the
// per-handle indices account for detach-before-insert semantics, which
// makes the iteration direction depend on the move direction.
func (r *Reconciler) moveRecord(rec bundle, parent container, from, target int) error {
	handles := rec.appendHandles(nil)
	sp := parent.surfaceParent()
	if target > from {
		for j := len(handles) - 1; j >= 0; j-- {
			if err := r.surf.MoveChild(sp, handles[j], target+j); err != nil {
				return fmt.Errorf("move keyed record: %w", err)
			}
		}
		return nil
	}
	for j, h := range handles {
		if err := r.surf.MoveChild(sp, h, target+j); err != nil {
			return fmt.Errorf("move keyed record: %w", err)
		}
	}
	return nil
}

func regionSlots(mirror []bundle) int {
	n := 0
	for _, rec := range mirror {
		n += rec.slots()
	}
	return n
}

// mirrorSlot returns the absolute first-slot index of rec within the
// list region, given its current mirror order.
func mirrorSlot(mirror []bundle, rec bundle, base int) int {
	idx := base
	for _, m := range mirror {
		if m == rec {
			return idx
		}
		idx += m.slots()
	}
	return idx
}

func mirrorRemove(mirror []bundle, rec bundle) []bundle {
	for i, m := range mirror {
		if m == rec {
			return append(mirror[:i], mirror[i+1:]...)
		}
	}
	return mirror
}

// mirrorInsertBefore inserts rec immediately before anchor, or at the
// end when anchor is nil.
func mirrorInsertBefore(mirror []bundle, rec bundle, anchor bundle) []bundle {
	if anchor == nil {
		return append(mirror, rec)
	}
	for i, m := range mirror {
		if m == anchor {
			mirror = append(mirror, nil)
			copy(mirror[i+1:], mirror[i:])
			mirror[i] = rec
			return mirror
		}
	}
	return append(mirror, rec)
}
