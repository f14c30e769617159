// Package thread rebuilds the reply forest of a post from its flat comment list.
package thread

import (
	"github.com/example/forum-platform/services/forum/internal/store"
)

// Node is a comment with its nested replies. It is built on read and never stored.
type Node struct {
	Comment store.Comment `json:"comment"`
	Replies []Node        `json:"replies"`
}

// BuildForest links comments into parent/child trees and returns the roots.
//
// Roots and replies keep the order in which they appear in comments; callers
// that want chronological threads sort the input first. A comment whose parent
// is not in the input is dropped together with its replies. Comments caught in
// a parent cycle are never reachable from a root and are dropped as well, so
// the result is always a finite forest.
func BuildForest(comments []store.Comment) []Node {
	// Arena of child index lists, addressed by position in comments.
	children := make([][]int, len(comments))
	index := make(map[string]int, len(comments))
	for i, c := range comments {
		if _, dup := index[c.ID]; !dup {
			index[c.ID] = i
		}
	}

	var roots []int
	for i, c := range comments {
		if index[c.ID] != i {
			continue
		}
		pid := c.ParentCommentID()
		if pid == "" {
			roots = append(roots, i)
			continue
		}
		if p, ok := index[pid]; ok {
			children[p] = append(children[p], i)
		}
	}

	out := make([]Node, len(roots))
	for i, r := range roots {
		out[i] = materialize(comments, children, r)
	}
	return out
}

func materialize(comments []store.Comment, children [][]int, i int) Node {
	n := Node{Comment: comments[i], Replies: make([]Node, len(children[i]))}
	for j, c := range children[i] {
		n.Replies[j] = materialize(comments, children, c)
	}
	return n
}

// Size counts every node in the forest.
func Size(forest []Node) int {
	n := 0
	for _, node := range forest {
		n += 1 + Size(node.Replies)
	}
	return n
}
