package relay

import (
	"context"
	"fmt"
	"sync"

	"github.com/zoobzio/capitan"
)

// Tree is a string-tag-addressed registry of hierarchical derived values.
// Each Node's core Path is a Join between the node's own local Path and its
// parent's core, folded by the tree's Operator, so a write anywhere on a
// branch recomputes every active descendant through the normal propagation
// machinery.
//
// The tree is built lazily: the first access runs the construction callback
// exactly once, no matter how many goroutines race to it.
type Tree[T any] struct {
	op        Operator[T]
	build     func(root *Node[T]) error
	equals    EqualsFunc[T]
	rootTag   string
	rootValue T

	once     sync.Once
	buildErr error
	forkErr  error

	mu    sync.RWMutex
	nodes map[string]*Node[T]
	root  *Node[T]

	// txMu serializes multi-node transactions and snapshots. It is the only
	// lock shared across nodes and is held only for the silent slot writes
	// plus the single forced dispatch, never across a propagation fan-out.
	txMu sync.Mutex
}

// treeConfig holds construction options for a Tree.
type treeConfig[T any] struct {
	equals EqualsFunc[T]
}

// TreeOption configures a Tree at construction.
type TreeOption[T any] func(*treeConfig[T])

// WithTreeEquals sets the equality used by every node Path in the tree.
func WithTreeEquals[T any](equals EqualsFunc[T]) TreeOption[T] {
	return func(c *treeConfig[T]) {
		c.equals = equals
	}
}

// NewTree declares a Tree rooted at rootTag with the given initial value.
// build receives the root Node and registers the rest of the structure via
// Fork; it runs exactly once, on first access, and a failure is sticky.
func NewTree[T any](rootTag string, rootValue T, op Operator[T], build func(root *Node[T]) error, opts ...TreeOption[T]) *Tree[T] {
	cfg := &treeConfig[T]{equals: defaultEquals[T]}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Tree[T]{
		op:        op,
		build:     build,
		equals:    cfg.equals,
		rootTag:   rootTag,
		rootValue: rootValue,
		nodes:     make(map[string]*Node[T]),
	}
}

// construct materializes the full tree. Guarded by once so the callback
// runs exactly once regardless of concurrent first accesses.
func (t *Tree[T]) construct() {
	if t.rootTag == "" {
		t.buildErr = ErrEmptyTag
		return
	}

	local := NewPath(WithEquals[T](t.equals))
	local.Set(t.rootValue)
	root := &Node[T]{tree: t, key: t.rootTag, local: local, core: local}

	t.mu.Lock()
	t.nodes[t.rootTag] = root
	t.root = root
	t.mu.Unlock()

	if t.build != nil {
		t.buildErr = t.build(root)
	}
	if t.buildErr == nil {
		t.buildErr = t.forkErr
	}
	if t.buildErr != nil {
		return
	}

	t.mu.RLock()
	count := len(t.nodes)
	t.mu.RUnlock()
	capitan.Emit(context.Background(), TreeBuilt,
		KeyTag.Field(t.rootTag),
		KeyCount.Field(count),
	)
}

// ensure runs lazy construction and returns the sticky build error, if any.
func (t *Tree[T]) ensure() error {
	t.once.Do(t.construct)
	return t.buildErr
}

// Get returns the Node registered under tag, triggering lazy construction
// on first access.
func (t *Tree[T]) Get(tag string) (*Node[T], error) {
	if err := t.ensure(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	n, ok := t.nodes[tag]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	return n, nil
}

// Root returns the root Node, triggering lazy construction on first access.
func (t *Tree[T]) Root() (*Node[T], error) {
	if err := t.ensure(); err != nil {
		return nil, err
	}
	return t.root, nil
}

// Len returns the number of registered nodes.
func (t *Tree[T]) Len() (int, error) {
	if err := t.ensure(); err != nil {
		return 0, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes), nil
}

// BranchAt returns the local values along the ancestor chain from the root
// down to tag, computed on demand from the current point-in-time values.
func (t *Tree[T]) BranchAt(tag string) ([]T, error) {
	n, err := t.Get(tag)
	if err != nil {
		return nil, err
	}
	return n.branchValues(), nil
}

// ResolveAt left-folds the ancestor chain from the root down to tag through
// the tree's operator, producing the same value live propagation would.
func (t *Tree[T]) ResolveAt(tag string) (T, error) {
	var zero T
	branch, err := t.BranchAt(tag)
	if err != nil {
		return zero, err
	}
	return foldValues(t.op, branch), nil
}

// TxEntry names one node overwrite inside a Transaction.
type TxEntry[T any] struct {
	Tag   string
	Value T
}

// Transaction atomically overwrites the local value of each named node and
// issues exactly one forced dispatch from the shallowest updated node.
// Writes are silent (bypassing per-node CAS dispatch) so observers never
// see a transiently inconsistent combination; the single forced dispatch
// lets the normal Join/fold chain recompute every affected descendant in
// one coherent wave.
func (t *Tree[T]) Transaction(entries ...TxEntry[T]) error {
	if err := t.ensure(); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	t.txMu.Lock()
	defer t.txMu.Unlock()

	// Resolve every target before mutating anything.
	targets := make([]*Node[T], len(entries))
	for i, e := range entries {
		t.mu.RLock()
		n, ok := t.nodes[e.Tag]
		t.mu.RUnlock()
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTag, e.Tag)
		}
		targets[i] = n
	}

	shallowest := targets[0]
	for i, n := range targets {
		n.silentWrite(entries[i].Value)
		if n.depth < shallowest.depth {
			shallowest = n
		}
	}

	shallowest.forceDispatch()

	capitan.Emit(context.Background(), TreeTransaction,
		KeyTag.Field(shallowest.key),
		KeyCount.Field(len(entries)),
	)
	return nil
}

// Snapshot captures a consistent, non-live copy of every node's local value
// for on-demand branch folding without touching the live graph.
func (t *Tree[T]) Snapshot() (*SimpleTree[T], error) {
	if err := t.ensure(); err != nil {
		return nil, err
	}

	t.txMu.Lock()
	defer t.txMu.Unlock()

	t.mu.RLock()
	defer t.mu.RUnlock()

	s := &SimpleTree[T]{
		op:      t.op,
		rootTag: t.rootTag,
		nodes:   make(map[string]snapNode[T], len(t.nodes)),
	}
	for tag, n := range t.nodes {
		s.nodes[tag] = snapNode[T]{
			value:     n.local.Get().Value(),
			parentKey: n.ParentKey(),
			depth:     n.depth,
		}
	}
	return s, nil
}

// Node is one entry of a Tree: a local Path holding the node's own value
// and a core Path deriving the branch fold from the parent chain.
type Node[T any] struct {
	tree   *Tree[T]
	key    string
	parent *Node[T]
	depth  int
	local  *Path[T]
	join   *Join[T]
	core   *Path[T]
}

// Fork registers a child Node under tag with the given initial value and
// wires its core Join to this node. Registering a tag twice is fatal to the
// tree's construction: the addressing invariant would otherwise break
// silently.
func (n *Node[T]) Fork(tag string, value T) (*Node[T], error) {
	t := n.tree
	if tag == "" {
		t.forkErr = ErrEmptyTag
		return nil, ErrEmptyTag
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.nodes[tag]; exists {
		err := fmt.Errorf("%w: %q", ErrDuplicateTag, tag)
		t.forkErr = err
		return nil, err
	}

	local := NewPath(WithEquals[T](t.equals))
	local.Set(value)
	join := NewJoin([]*Path[T]{n.core, local}, t.op, WithJoinEquals[T](t.equals))

	child := &Node[T]{
		tree:   t,
		key:    tag,
		parent: n,
		depth:  n.depth + 1,
		local:  local,
		join:   join,
		core:   join.Path(),
	}
	t.nodes[tag] = child
	return child, nil
}

// Key returns the node's tag.
func (n *Node[T]) Key() string {
	return n.key
}

// ParentKey returns the parent's tag, or the empty string for the root.
func (n *Node[T]) ParentKey() string {
	if n.parent == nil {
		return ""
	}
	return n.parent.key
}

// Depth returns the node's depth; the root is at depth 0.
func (n *Node[T]) Depth() int {
	return n.depth
}

// Core returns the node's derived Path: the fold of the branch from the
// root down to this node. Activate a consumer on it to receive live
// recomputations.
func (n *Node[T]) Core() *Path[T] {
	return n.core
}

// Local returns the node's own value Path.
func (n *Node[T]) Local() *Path[T] {
	return n.local
}

// Set commits a new local value through the normal dispatch machinery and
// reports whether it committed.
func (n *Node[T]) Set(value T) bool {
	return n.local.Set(value)
}

// silentWrite overwrites the local value without dispatching: the local
// cache and, for non-root nodes, the join's local slot are both updated so
// a later forced dispatch folds the fresh values.
func (n *Node[T]) silentWrite(value T) {
	n.local.cache.silentSet(value)
	if n.join != nil {
		n.join.silentReplace(1, value)
	}
}

// forceDispatch issues the transaction's single coordinated dispatch from
// this node.
func (n *Node[T]) forceDispatch() {
	if n.join != nil {
		n.join.forceEmit()
		return
	}
	n.core.forcePublish()
}

func (n *Node[T]) branchValues() []T {
	depth := n.depth
	values := make([]T, depth+1)
	for cur := n; cur != nil; cur = cur.parent {
		values[cur.depth] = cur.local.Get().Value()
	}
	return values
}

// SimpleTree is a consistent, point-in-time copy of a Tree's local values
// supporting the same branch folding without the live propagation graph.
type SimpleTree[T any] struct {
	op      Operator[T]
	rootTag string
	nodes   map[string]snapNode[T]
}

type snapNode[T any] struct {
	value     T
	parentKey string
	depth     int
}

// Value returns the captured local value for tag.
func (s *SimpleTree[T]) Value(tag string) (T, error) {
	var zero T
	n, ok := s.nodes[tag]
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	return n.value, nil
}

// Branch returns the captured values along the ancestor chain root → tag.
func (s *SimpleTree[T]) Branch(tag string) ([]T, error) {
	n, ok := s.nodes[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	values := make([]T, n.depth+1)
	for cur := n; ; cur = s.nodes[cur.parentKey] {
		values[cur.depth] = cur.value
		if cur.parentKey == "" {
			break
		}
	}
	return values, nil
}

// Resolve left-folds the captured branch root → tag through the operator.
func (s *SimpleTree[T]) Resolve(tag string) (T, error) {
	var zero T
	branch, err := s.Branch(tag)
	if err != nil {
		return zero, err
	}
	return foldValues(s.op, branch), nil
}

// Len returns the number of captured nodes.
func (s *SimpleTree[T]) Len() int {
	return len(s.nodes)
}

func foldValues[T any](op Operator[T], values []T) T {
	acc := values[0]
	for _, v := range values[1:] {
		acc = op(acc, v)
	}
	return acc
}
