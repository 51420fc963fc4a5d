package tree

import "github.com/benz9527/xboot-rbtree/lib/infra"

/*
r1: Current node X has left and right node.
Find node X's pred (or succ) to replace it to be removed.
Swap the key and value only, X keeps its color and links.
Both of pred and succ have one child at most.

Find pred:

	  |                    |
	  X                    L
	 / \                  / \
	..  R   swap(X, L)   ..  R
	  \     =========>     \
	   L                    X

r2: (1) Current node Y is a red leaf node, remove directly.

r2: (2) Current node Y is a black leaf node, Y is the double black
vacancy. Rebalance from Y first, then remove it.

r3: Current node Y contains a single child node C.
Splice C into Y's place.
If Y is black and C is red, repaint C into black.
If both are black, C is the double black vacancy.
*/
func (tree *rbTree[K, V]) removeNode(z *rbNode[K, V]) *rbNode[K, V] {
	res := &rbNode[K, V]{
		key:   z.key,
		val:   z.val,
		color: z.color,
	}

	y := z
	if /* r1 */ y.left != nil && y.right != nil {
		if tree.isRmBorrowSucc {
			y = z.right.minimum()
		} else {
			y = z.left.maximum()
		}
		z.key, z.val = y.key, y.val
	}

	if /* r2 */ y.isLeaf() {
		if /* r2 (2) */ y.isBlack() {
			tree.removeRebalance(y)
		}
		switch dir := y.Direction(); dir {
		case Root:
			tree.root = nil
		case Left:
			y.parent.left = nil
		case Right:
			y.parent.right = nil
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] unknown leaf direction, violate (r2)")
		}
	} else /* r3 */ {
		c := y.left
		if c == nil {
			c = y.right
		}

		switch dir := y.Direction(); dir {
		case Root:
			tree.root = c
		case Left:
			y.parent.left = c
		case Right:
			y.parent.right = c
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] unknown node direction, violate (r3)")
		}
		c.parent = y.parent

		if y.isBlack() {
			if c.isRed() {
				c.color = Black
			} else {
				tree.removeRebalance(c)
			}
		}
	}

	// Unlink node
	y.parent, y.left, y.right = nil, nil, nil

	tree.count--
	tree.stats.RecordRemove()
	return res
}

func (tree *rbTree[K, V]) Remove(key K) (RBNode[K, V], error) {
	if infra.IsUnordered(key) {
		return nil, tree.fault(ErrInvalidArgument, "remove", key)
	}
	z := tree.search(key)
	if z == nil {
		return nil, tree.fault(ErrKeyNotFound, "remove", key)
	}
	return tree.removeNode(z), nil
}

func (tree *rbTree[K, V]) RemoveMin() (RBNode[K, V], error) {
	if tree.root == nil {
		return nil, tree.fault(ErrEmptyTree, "remove min", nil)
	}
	return tree.removeNode(tree.root.minimum()), nil
}

func (tree *rbTree[K, V]) RemoveMax() (RBNode[K, V], error) {
	if tree.root == nil {
		return nil, tree.fault(ErrEmptyTree, "remove max", nil)
	}
	return tree.removeNode(tree.root.maximum()), nil
}

/*
X carries an extra black (double black), so the path through X is one black
short of its sibling side. Cases are checked top to bottom on the current
shape of every round.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

Sc is the sibling's child at X's side (near nephew).
Sd is the sibling's child at the opposite side (far nephew).

rm1: X is the root. Paint it into black, the extra black disappears.

rm2: The sibling S is red, so the parent P, Sc and Sd must be black.
Repaint P into red and S into black, rotate P to X's side.
X gets a black sibling (former Sc), continue with X.

	  [P]                   [S]
	  / \    l-rotate(P)    / \
	[X] <S>  ==========>  <P> [Sd]
	    / \               / \
	 [Sc] [Sd]          [X] [Sc]

rm3: P, S, Sc and Sd are all black.
Repaint S into red, both sides of P are one black short now.
Continue with P.

	  [P]             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm4: P is red, S, Sc and Sd are black.
Swap the colors of P and S. Done.

	  <P>             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm5: S is black, Sc is red and Sd is black. P color is ignored.
Repaint S into red and Sc into black, rotate S away from X.
Sd becomes red (the former S), continue into rm6.

	  {P}                   {P}
	  / \    r-rotate(S)    / \
	[X] [S]  ==========>  [X] [Sc]
	    / \                     \
	  <Sc> [Sd]                 <S>
	                              \
	                              [Sd]

rm6: S is black and Sd is red. P color is ignored.
S takes P's color, repaint P and Sd into black, rotate P to X's side.
X gains a black ancestor. Done.

	  {P}                   {S}
	  / \    l-rotate(P)    / \
	[X] [S]  ==========>  [P] [Sd]
	    / \               / \
	  {Sc} <Sd>         [X] {Sc}
*/
func (tree *rbTree[K, V]) removeRebalance(x *rbNode[K, V]) {
	for {
		if /* rm1 */ x.isRoot() {
			x.color = Black
			tree.stats.RecordCase(caseRemoveRoot)
			return
		}

		dir := x.Direction()
		p, s := x.parent, x.sibling()
		if s == nil {
			// impossible run to here, a double black node always has a sibling
			panic( /* debug assertion */ "[rbtree] remove rebalance without sibling")
		}

		var sc, sd *rbNode[K, V]
		switch dir {
		case Left:
			sc, sd = s.left, s.right
		case Right:
			sc, sd = s.right, s.left
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove rebalance without direction")
		}

		switch {
		case /* rm2 */ s.isRed():
			p.color, s.color = Red, Black
			tree.rotate(p, dir)
			tree.stats.RecordCase(caseRemoveRedSibling)
		case /* rm3 */ p.isBlack() && sc.isBlack() && sd.isBlack():
			s.color = Red
			tree.stats.RecordCase(caseRemoveRecolorUp)
			x = p
		case /* rm4 */ p.isRed() && sc.isBlack() && sd.isBlack():
			p.color, s.color = Black, Red
			tree.stats.RecordCase(caseRemoveRedParent)
			return
		case /* rm5 */ sc.isRed() && sd.isBlack():
			s.color, sc.color = Red, Black
			tree.rotate(s, -dir)
			tree.stats.RecordCase(caseRemoveNearNephew)
		default: // rm6
			s.color = p.color
			p.color, sd.color = Black, Black
			tree.rotate(p, dir)
			tree.stats.RecordCase(caseRemoveFarNephew)
			return
		}
	}
}
