// Package postingswriter aggregates (token, source) postings in memory and
// spills them to per-token files under a staging directory, bounding memory
// via a threshold-triggered spill.
//
// Each Writer worker owns a private pending map, guarded by a per-token
// lock for inserts and an admission gate during spills: the gate is closed
// (green light off) only while a spill swaps the map out for an empty one,
// so concurrent inserts never touch the map a spill then iterates. A single writer mutex, shared
// across all workers in a Group, serializes the actual spill-to-disk step so
// two workers never append to the same "<token>_.ind" file at once — the
// Design Notes' deliberately "coarser but safer" contract, kept process-
// global rather than sharded per path.
package postingswriter

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Record is one (source, tokens) observation from the ingestion pipeline.
type Record struct {
	Source string
	Tokens map[string]struct{}
}

// Group coordinates N Writer workers that share one staging directory and
// one writer mutex.
type Group struct {
	stagingDir string
	threshold  int
	writerMu   sync.Mutex
	workers    []*Writer
}

// NewGroup creates a Group of n writer workers spilling into stagingDir.
// threshold is the pending-entry count (per worker) that triggers a spill.
func NewGroup(stagingDir string, n, threshold int) *Group {
	if n < 1 {
		n = 1
	}
	g := &Group{stagingDir: stagingDir, threshold: threshold}
	g.workers = make([]*Writer, n)
	for i := range g.workers {
		g.workers[i] = newWriter(g)
	}
	return g
}

// WorkerFor routes token to its owning worker by a fast hash, so a given
// token is only ever mutated by one worker's pending map.
func (g *Group) WorkerFor(token string) *Writer {
	idx := xxhash.Sum64String(token) % uint64(len(g.workers))
	return g.workers[idx]
}

// Insert routes every token in rec to its owning worker.
func (g *Group) Insert(rec Record) error {
	for tok := range rec.Tokens {
		if err := g.WorkerFor(tok).insert(tok, rec.Source); err != nil {
			return err
		}
	}
	return nil
}

// Flush spills every worker's residual pending entries. Call once after the
// ingestion pipeline has drained, per the termination-sentinel step of the
// spec: acquire the writer mutex unconditionally and spill whatever is left.
func (g *Group) Flush() error {
	for _, w := range g.workers {
		if err := w.flushResidue(); err != nil {
			return err
		}
	}
	return nil
}

// entry is one token's accumulating postings set inside a worker.
type entry struct {
	mu      sync.Mutex
	sources map[string]struct{}
}

// Writer is one worker's private pending map plus its admission gate.
type Writer struct {
	group *Group

	mu      sync.Mutex // guards pending and nWaiting
	pending map[string]*entry
	nWaiting int

	gateMu sync.RWMutex // RLock = gate open (inserts proceed); Lock = gate closed (spill iterating)
}

func newWriter(g *Group) *Writer {
	return &Writer{group: g, pending: make(map[string]*entry)}
}

// insert adds source under token, then spills if the worker has crossed its
// threshold and the group's writer mutex is free.
func (w *Writer) insert(token, source string) error {
	w.gateMu.RLock()
	e := w.getOrCreateEntry(token)
	e.mu.Lock()
	if e.sources == nil {
		e.sources = make(map[string]struct{})
	}
	_, already := e.sources[source]
	e.sources[source] = struct{}{}
	e.mu.Unlock()
	w.gateMu.RUnlock()

	if !already {
		w.mu.Lock()
		w.nWaiting++
		n := w.nWaiting
		w.mu.Unlock()
		if n > w.group.threshold {
			return w.maybeSpill()
		}
	}
	return nil
}

func (w *Writer) getOrCreateEntry(token string) *entry {
	w.mu.Lock()
	e, ok := w.pending[token]
	if !ok {
		e = &entry{}
		w.pending[token] = e
	}
	w.mu.Unlock()
	return e
}

// maybeSpill spills only if the writer mutex can be acquired without
// blocking, per the spec: a busy peer's spill is not waited on.
func (w *Writer) maybeSpill() error {
	if !w.group.writerMu.TryLock() {
		return nil
	}
	defer w.group.writerMu.Unlock()
	return w.spillLocked()
}

// flushResidue spills unconditionally, acquiring the writer mutex even if
// it must block — used once on pipeline shutdown.
func (w *Writer) flushResidue() error {
	w.group.writerMu.Lock()
	defer w.group.writerMu.Unlock()
	return w.spillLocked()
}

// spillLocked requires the caller to already hold the group's writer mutex.
// It closes the admission gate, swaps out the pending map, reopens the
// gate, then appends the swapped-out entries to disk without holding any
// lock other than the writer mutex already held by the caller.
func (w *Writer) spillLocked() error {
	w.gateMu.Lock()
	w.mu.Lock()
	toSpill := w.pending
	w.pending = make(map[string]*entry)
	w.nWaiting = 0
	w.mu.Unlock()
	w.gateMu.Unlock()

	for token, e := range toSpill {
		if len(e.sources) == 0 {
			continue
		}
		if err := appendSources(filepath.Join(w.group.stagingDir, token+"_.ind"), e.sources); err != nil {
			return err
		}
	}
	return nil
}

func appendSources(path string, sources map[string]struct{}) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for src := range sources {
		if _, err := w.WriteString(src); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}
