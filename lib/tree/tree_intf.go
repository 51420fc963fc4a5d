package tree

import (
	"errors"

	"github.com/benz9527/xboot-rbtree/lib/infra"
)

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

var (
	ErrDuplicateKey    = errors.New("[rbtree] duplicate key")
	ErrKeyNotFound     = errors.New("[rbtree] key not found")
	ErrEmptyTree       = errors.New("[rbtree] empty tree")
	ErrInvalidArgument = errors.New("[rbtree] invalid argument")
)

// RBNode is a read-only view of a linked node.
// Do not keep it across a Remove of the same key.
type RBNode[K infra.OrderedKey, V any] interface {
	Key() K
	Val() V
	Color() RBColor
	Left() RBNode[K, V]
	Right() RBNode[K, V]
	Parent() RBNode[K, V]
}

// RBTree is not safe for concurrent use.
type RBTree[K infra.OrderedKey, V any] interface {
	Len() int64
	Root() RBNode[K, V]
	Insert(key K, val V) error
	// Remove returns a detached node that holds the removed key and value.
	Remove(key K) (RBNode[K, V], error)
	RemoveMin() (RBNode[K, V], error)
	RemoveMax() (RBNode[K, V], error)
	Get(key K) (V, error)
	Exists(key K) bool
	Min() (RBNode[K, V], error)
	Max() (RBNode[K, V], error)
	// Height of the empty tree is -1 and a single root is 0.
	Height() int
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	Validate() error
	// Clear drops the root in O(1).
	Clear()
	// Release unlinks every node before dropping the root.
	Release()
}
