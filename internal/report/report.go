// Package report turns a completed blocking graph into the human-readable
// contention summary.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/isabella232/pglockanalyze/internal/advice"
	"github.com/isabella232/pglockanalyze/internal/classify"
	"github.com/isabella232/pglockanalyze/internal/dump"
	"github.com/isabella232/pglockanalyze/internal/graph"
)

const msgNoBlocking = "no blocking pids found"

// Synthesizer renders the contention summary for a completed blocking graph.
type Synthesizer struct {
	w      io.Writer
	colors bool
	hints  *advice.Table
}

// New returns a Synthesizer writing to w. hints may be nil to suppress
// per-mode advice lines.
func New(w io.Writer, colors bool, hints *advice.Table) *Synthesizer {
	return &Synthesizer{w: w, colors: colors, hints: hints}
}

// Write renders the report. Pids that block nobody are omitted; the rest are
// printed in ascending order of how many waiters they block, ties broken by
// first appearance in the dump.
func (s *Synthesizer) Write(g *graph.Builder) error {
	blocking := selectBlocking(g)
	if len(blocking) == 0 {
		fmt.Fprintln(s.w, msgNoBlocking)
		return nil
	}

	s.overview(blocking)

	explained := make(map[string]bool)
	for _, n := range blocking {
		s.pidSection(n, explained)
	}
	return nil
}

// selectBlocking keeps pids with a nonempty blocking sequence, sorted
// ascending by how many waiters they block. The sort is stable so ties keep
// insertion order.
func selectBlocking(g *graph.Builder) []*graph.Node {
	var nodes []*graph.Node
	for _, n := range g.Nodes() {
		if len(n.Blocking) > 0 {
			nodes = append(nodes, n)
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return len(nodes[i].Blocking) < len(nodes[j].Blocking)
	})
	return nodes
}

// overview prints a table of every blocking pid before the per-pid detail.
func (s *Synthesizer) overview(nodes []*graph.Node) {
	t := table.NewWriter()
	t.SetOutputMirror(s.w)
	t.AppendHeader(table.Row{"PID", "BLOCKING", "BLOCKED ON", "KIND"})
	for _, n := range nodes {
		t.AppendRow(table.Row{
			n.PID,
			len(n.Blocking),
			len(n.BlockedOn),
			n.Blocking[0][dump.FieldOtherQueryKind],
		})
	}
	t.Render()
	fmt.Fprintln(s.w)
}

// lockGroup is the transient two-level grouping for one pid: what the pid
// holds or wants, and which modes its waiters are queued on.
type lockGroup struct {
	mode    string              // raw other_mode, for advice lookup
	held    bool                // granted on the other side
	waiters map[string][]string // waiting_mode -> waiting pids, in row order
}

// pidSection prints one blocking pid: heading, representative query, and the
// lock-kind groups. A hint for a held mode is printed at most once per
// report, tracked in explained.
func (s *Synthesizer) pidSection(n *graph.Node, explained map[string]bool) {
	heading := fmt.Sprintf("pid %s (blocking: %d)", n.PID, len(n.Blocking))
	if s.colors {
		color.New(color.FgCyan, color.Bold).Fprintln(s.w, heading)
	} else {
		fmt.Fprintln(s.w, heading)
	}

	rep := n.Blocking[0].OtherQuery()
	fmt.Fprintf(s.w, "  query: %s\n", classify.Normalize(rep))
	if fp := classify.Fingerprint(rep); fp != "" {
		fmt.Fprintf(s.w, "  fingerprint: %s\n", fp)
	}

	groups := groupLocks(n.Blocking)
	for _, label := range sortedKeys(groups) {
		g := groups[label]
		for _, mode := range sortedKeys(g.waiters) {
			pids := g.waiters[mode]
			fmt.Fprintf(s.w, "  %s: %d waiting on %s (e.g. pid %s)\n", label, len(pids), mode, pids[0])
		}
		if s.hints != nil && g.held && !explained[g.mode] {
			if hint, ok := s.hints.Hint(g.mode); ok {
				fmt.Fprintf(s.w, "    hint: %s\n", hint)
				explained[g.mode] = true
			}
		}
	}
	fmt.Fprintln(s.w)
}

// groupLocks builds the two-level grouping for one pid's blocking rows,
// keyed by the "holds <mode>" / "wants <mode>" label.
func groupLocks(recs []dump.Record) map[string]*lockGroup {
	groups := make(map[string]*lockGroup)
	for _, rec := range recs {
		verb := "wants"
		if rec.OtherGranted() {
			verb = "holds"
		}
		label := verb + " " + rec.OtherMode()

		g, ok := groups[label]
		if !ok {
			g = &lockGroup{
				mode:    rec.OtherMode(),
				held:    rec.OtherGranted(),
				waiters: make(map[string][]string),
			}
			groups[label] = g
		}
		g.waiters[rec.WaitingMode()] = append(g.waiters[rec.WaitingMode()], rec.WaitingPID())
	}
	return groups
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
