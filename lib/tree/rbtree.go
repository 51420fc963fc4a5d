package tree

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/benz9527/xboot-rbtree/lib/infra"
	"github.com/benz9527/xboot-rbtree/lib/xlog"
)

type rbNode[K infra.OrderedKey, V any] struct {
	parent *rbNode[K, V] // back-reference only, children own the subtree
	left   *rbNode[K, V]
	right  *rbNode[K, V]
	key    K
	val    V
	color  RBColor
}

func (node *rbNode[K, V]) Color() RBColor {
	return node.color
}

func (node *rbNode[K, V]) Key() K {
	return node.key
}

func (node *rbNode[K, V]) Val() V {
	return node.val
}

func (node *rbNode[K, V]) Left() RBNode[K, V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[K, V]) Parent() RBNode[K, V] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *rbNode[K, V]) Right() RBNode[K, V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

// NIL leaves are black.
func (node *rbNode[K, V]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *rbNode[K, V]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K, V]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *rbNode[K, V]) isLeaf() bool {
	return node != nil && node.left == nil && node.right == nil
}

func (node *rbNode[K, V]) Direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[K, V]) sibling() *rbNode[K, V] {
	switch node.Direction() {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:
	}
	return nil
}

func (node *rbNode[K, V]) uncle() *rbNode[K, V] {
	return node.parent.sibling()
}

func (node *rbNode[K, V]) grandpa() *rbNode[K, V] {
	return node.parent.parent
}

func (node *rbNode[K, V]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *rbNode[K, V]) minimum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[K, V]) maximum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

type rbTree[K infra.OrderedKey, V any] struct {
	root           *rbNode[K, V]
	count          int64
	cmp            infra.OrderedKeyComparator[K]
	isDesc         bool
	isRmBorrowSucc bool
	logger         xlog.XLogger
	stats          *rbTreeStats
}

func (tree *rbTree[K, V]) keyCompare(k1, k2 K) int64 {
	res := tree.cmp(k1, k2)
	if tree.isDesc {
		return -res
	}
	return res
}

func (tree *rbTree[K, V]) Len() int64 {
	return tree.count
}

func (tree *rbTree[K, V]) Root() RBNode[K, V] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

// fault records a rejected operation and decorates the sentinel err with
// the operation, the key and the caller stack.
func (tree *rbTree[K, V]) fault(err error, op string, key any) error {
	tree.stats.RecordFault(err)
	if key == nil {
		err = infra.WrapErrorStack(err)
	} else {
		err = infra.WrapErrorStackWithMessage(err, fmt.Sprintf("%s %v", op, key))
	}
	if tree.logger != nil {
		fields := []zap.Field{zap.String("op", op)}
		if key != nil {
			fields = append(fields, zap.Any("key", key))
		}
		var es infra.ErrorStack
		if errors.As(err, &es) {
			fields = append(fields, zap.Inline(es))
		}
		tree.logger.Debug("[rbtree] operation rejected", fields...)
	}
	return err
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// (Conclusion) If a node X has exactly one child, it must be a red child,
//   because if it were black, its NIL descendants would sit at a different
//   black depth than X's NIL child, violating p4.

/*
	  |                         |
	  X                         S
	 / \     leftRotate(X)     / \
	L   S    ============>    X   Sd
	   / \                   / \
	 Sc   Sd                L   Sc
*/
func (tree *rbTree[K, V]) leftRotate(x *rbNode[K, V]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.Direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	y.parent = p
	tree.stats.RecordRotation(Left)
}

/*
	     |                         |
	     X                         S
	    / \     rightRotate(X)    / \
	   S   R    ============>   Sd   X
	  / \                           / \
	Sd   Sc                       Sc   R
*/
func (tree *rbTree[K, V]) rightRotate(x *rbNode[K, V]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	dir := x.Direction()
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	y.parent = p
	tree.stats.RecordRotation(Right)
}

// rotate moves x down to the dir side.
func (tree *rbTree[K, V]) rotate(x *rbNode[K, V], dir RBDirection) {
	switch dir {
	case Left:
		tree.leftRotate(x)
	case Right:
		tree.rightRotate(x)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] rotate without direction")
	}
}

// i1: Empty rbtree, insert directly, but root node is painted to black.
func (tree *rbTree[K, V]) Insert(key K, val V) error {
	if infra.IsUnordered(key) {
		return tree.fault(ErrInvalidArgument, "insert", key)
	}

	if /* i1 */ tree.root == nil {
		tree.root = &rbNode[K, V]{
			key:   key,
			val:   val,
			color: Black,
		}
		tree.count++
		tree.stats.RecordInsert()
		return nil
	}

	var (
		y   *rbNode[K, V]
		res int64
	)
	for x := tree.root; x != nil; {
		y = x
		if res = tree.keyCompare(key, x.key); /* equal */ res == 0 {
			return tree.fault(ErrDuplicateKey, "insert", key)
		} else /* less */ if res < 0 {
			x = x.left
		} else /* greater */ {
			x = x.right
		}
	}

	z := &rbNode[K, V]{
		key:    key,
		val:    val,
		color:  Red,
		parent: y,
	}
	if res < 0 {
		y.left = z
	} else {
		y.right = z
	}

	tree.count++
	tree.stats.RecordInsert()
	tree.insertRebalance(z)
	return nil
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

im1: X is root, paint it into black.

im2: X's parent P is black, nothing violated.

im3: Both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
Repaint P and U into black, G into red (root stays black).
G and its parent may be red-violation now. Recursive to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im4: The parent P is red but the uncle U is black, X and P
are the same direction (left-left or right-right).
Swap the colors of P and G, rotate G to the opposite direction.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]

im5: The parent P is red but the uncle U is black, X is opposite
direction to P (left-right or right-left).
Rotate P to straighten the line, X takes P's place.
Then swap the colors of X and G, rotate G like im4.

	  [G]                 [G]                [X]
	  / \    rotate(P)    / \    rotate(G)   / \
	<P> [U]  ========>  <X> [U]  ========>  <P> <G>
	  \                 /                          \
	  <X>             <P>                          [U]
*/
func (tree *rbTree[K, V]) insertRebalance(x *rbNode[K, V]) {
	for {
		if /* im1 */ x.isRoot() {
			x.color = Black
			tree.stats.RecordCase(caseInsertRoot)
			return
		}

		if /* im2 */ x.parent.isBlack() {
			return
		}

		// A red parent is never the root, grandpa exists.
		p, gp, u := x.parent, x.grandpa(), x.uncle()
		if /* im3 */ u.isRed() {
			p.color, u.color = Black, Black
			if !gp.isRoot() {
				gp.color = Red
			}
			tree.stats.RecordCase(caseInsertRecolor)
			x = gp
			continue
		}

		var top *rbNode[K, V]
		xDir, pDir := x.Direction(), p.Direction()
		switch {
		case /* im4 ll */ xDir == Left && pDir == Left:
			p.color, gp.color = gp.color, p.color
			tree.rightRotate(gp)
			top = p
			tree.stats.RecordCase(caseInsertLL)
		case /* im5 lr */ xDir == Left && pDir == Right:
			tree.rightRotate(p)
			x.color, gp.color = gp.color, x.color
			tree.leftRotate(gp)
			top = x
			tree.stats.RecordCase(caseInsertLR)
		case /* im4 rr */ xDir == Right && pDir == Right:
			p.color, gp.color = gp.color, p.color
			tree.leftRotate(gp)
			top = p
			tree.stats.RecordCase(caseInsertRR)
		case /* im5 rl */ xDir == Right && pDir == Left:
			tree.leftRotate(p)
			x.color, gp.color = gp.color, x.color
			tree.rightRotate(gp)
			top = x
			tree.stats.RecordCase(caseInsertRL)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] insert violate (im4-im5)")
		}

		if top.isRoot() {
			top.color = Black
		}
		return
	}
}

// search is the ordered descent, it stops on the equal key.
func (tree *rbTree[K, V]) search(key K) *rbNode[K, V] {
	for aux := tree.root; aux != nil; {
		res := tree.keyCompare(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *rbTree[K, V]) Exists(key K) bool {
	if infra.IsUnordered(key) {
		return false
	}
	return tree.search(key) != nil
}

func (tree *rbTree[K, V]) Get(key K) (V, error) {
	var zero V
	if infra.IsUnordered(key) {
		return zero, tree.fault(ErrInvalidArgument, "get", key)
	}
	x := tree.search(key)
	if x == nil {
		return zero, tree.fault(ErrKeyNotFound, "get", key)
	}
	return x.val, nil
}

func (tree *rbTree[K, V]) Min() (RBNode[K, V], error) {
	if tree.root == nil {
		return nil, tree.fault(ErrEmptyTree, "min", nil)
	}
	return tree.root.minimum(), nil
}

func (tree *rbTree[K, V]) Max() (RBNode[K, V], error) {
	if tree.root == nil {
		return nil, tree.fault(ErrEmptyTree, "max", nil)
	}
	return tree.root.maximum(), nil
}

func (tree *rbTree[K, V]) Height() int {
	return height(tree.root)
}

func height[K infra.OrderedKey, V any](node *rbNode[K, V]) int {
	if node == nil {
		return -1
	}
	return max(height(node.left), height(node.right)) + 1
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	aux := tree.root
	if aux == nil {
		return
	}

	stack := make([]*rbNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

func (tree *rbTree[K, V]) Clear() {
	tree.stats.RecordClear(tree.count)
	tree.root = nil
	tree.count = 0
}

func (tree *rbTree[K, V]) Release() {
	aux := tree.root
	tree.stats.RecordClear(tree.count)
	tree.root = nil
	tree.count = 0
	if aux == nil {
		return
	}

	stack := make([]*rbNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()
	for stack = append(stack, aux); len(stack) > 0; {
		aux = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.parent, aux.left, aux.right = nil, nil, nil
	}
}
