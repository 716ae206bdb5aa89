// Package graph accumulates per-pid blocking relationships from decoded
// dump records.
package graph

import "github.com/isabella232/pglockanalyze/internal/dump"

// notGranted is the pg_locks value for a lock that is wanted, not held.
const notGranted = "f"

// Node is one backend pid together with the contention rows it appears in.
type Node struct {
	PID string

	// Blocking holds rows where this pid is the "other" side: it holds or
	// wants a lock some other pid is waiting on.
	Blocking []dump.Record

	// BlockedOn holds rows where this pid is the waiting side.
	BlockedOn []dump.Record
}

// Builder accumulates the blocking graph. It implements dump.Handler so the
// session can feed it directly. Every (waiting, other) row with a mode is
// treated as a candidate conflict; no lock-compatibility matrix is
// consulted, which makes this a rough first pass rather than an
// authoritative conflict resolver.
type Builder struct {
	nodes map[string]*Node
	order []string

	wantedOnly bool
}

// NewBuilder returns an empty graph. With wantedOnly set, rows whose other
// side has not actually been granted its lock are dropped instead of
// modeled, keeping only genuine held-versus-wanted conflicts.
func NewBuilder(wantedOnly bool) *Builder {
	return &Builder{
		nodes:      make(map[string]*Node),
		wantedOnly: wantedOnly,
	}
}

// HandleRecord files rec under both pids it names, creating their nodes on
// first reference.
func (b *Builder) HandleRecord(rec dump.Record) error {
	if b.wantedOnly && rec[dump.FieldOtherGranted] == notGranted {
		return nil
	}

	waiting := b.node(rec.WaitingPID())
	other := b.node(rec.OtherPID())

	other.Blocking = append(other.Blocking, rec)
	waiting.BlockedOn = append(waiting.BlockedOn, rec)
	return nil
}

func (b *Builder) node(pid string) *Node {
	if n, ok := b.nodes[pid]; ok {
		return n
	}
	n := &Node{PID: pid}
	b.nodes[pid] = n
	b.order = append(b.order, pid)
	return n
}

// Node returns the entry for pid, or nil if the pid never appeared.
func (b *Builder) Node(pid string) *Node { return b.nodes[pid] }

// Nodes returns every pid's entry in first-appearance order.
func (b *Builder) Nodes() []*Node {
	out := make([]*Node, 0, len(b.order))
	for _, pid := range b.order {
		out = append(out, b.nodes[pid])
	}
	return out
}

// Len returns the number of distinct pids observed.
func (b *Builder) Len() int { return len(b.order) }
