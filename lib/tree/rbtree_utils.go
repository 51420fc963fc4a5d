package tree

import (
	"errors"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xboot-rbtree/lib/infra"
)

var (
	ErrRedViolation   = errors.New("rbtree red violation")
	ErrBlackViolation = errors.New("rbtree black violation")
	ErrRootViolation  = errors.New("rbtree root violation")
	ErrLinkViolation  = errors.New("rbtree parent link violation")
	ErrOrderViolation = errors.New("rbtree order violation")
	ErrCountViolation = errors.New("rbtree count violation")
)

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

func isRedNode[K infra.OrderedKey, V any](node RBNode[K, V]) bool {
	return node != nil && node.Color() == Red
}

// Inorder traversal to validate the rbtree properties.
func RedViolationValidate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	aux := tree.Root()
	if aux == nil {
		return nil
	}

	stack := make([]RBNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; isRedNode[K, V](aux) {
			if isRedNode[K, V](aux.Left()) || isRedNode[K, V](aux.Right()) {
				return ErrRedViolation
			}
		}

		stack = stack[:size-1]
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
	return nil
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
	        /  \
	     <8>    [15]
	     / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            <16>

2-3-4 tree like:

	     <8> --- [13] --- <15>
	    /  \             /    \
	   /    \           /      \
	<1>-[6][11]      [14] <16>-[17]

Every path from a node down to its NIL leaves holds the same
number of black nodes.
*/
func BlackViolationValidate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	if _, ok := blackHeight[K, V](tree.Root()); !ok {
		return ErrBlackViolation
	}
	return nil
}

// blackHeight returns the black height of node, NIL leaves count as 1.
func blackHeight[K infra.OrderedKey, V any](node RBNode[K, V]) (int, bool) {
	if node == nil {
		return 1, true
	}
	l, ok := blackHeight[K, V](node.Left())
	if !ok {
		return 0, false
	}
	r, ok := blackHeight[K, V](node.Right())
	if !ok || l != r {
		return 0, false
	}
	if node.Color() == Black {
		l++
	}
	return l, true
}

func RootColorValidate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}
	if root.Color() != Black || root.Parent() != nil {
		return ErrRootViolation
	}
	return nil
}

// ParentLinkValidate checks every child points back to its parent.
func ParentLinkValidate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}
	stack := []RBNode[K, V]{root}
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range []RBNode[K, V]{aux.Left(), aux.Right()} {
			if child == nil {
				continue
			}
			if child.Parent() != aux {
				return ErrLinkViolation
			}
			stack = append(stack, child)
		}
	}
	return nil
}

// Validate checks all the rbtree properties, the key order and the count.
// The violations are combined into one error.
func (tree *rbTree[K, V]) Validate() error {
	var merr error
	merr = multierr.Append(merr, RootColorValidate[K, V](tree))
	merr = multierr.Append(merr, RedViolationValidate[K, V](tree))
	merr = multierr.Append(merr, BlackViolationValidate[K, V](tree))
	merr = multierr.Append(merr, ParentLinkValidate[K, V](tree))

	var (
		prev    K
		visited int64
		ordered = true
	)
	tree.Foreach(func(idx int64, color RBColor, key K, val V) bool {
		if idx > 0 && tree.keyCompare(prev, key) >= 0 {
			ordered = false
		}
		prev = key
		visited++
		return true
	})
	if !ordered {
		merr = multierr.Append(merr, ErrOrderViolation)
	}
	if visited != tree.count {
		merr = multierr.Append(merr, ErrCountViolation)
	}

	if merr != nil && tree.logger != nil {
		tree.logger.ErrorStack(infra.WrapErrorStack(merr), "[rbtree] invariant violated",
			zap.Int64("count", tree.count),
			zap.Int64("visited", visited),
		)
	}
	return merr
}
