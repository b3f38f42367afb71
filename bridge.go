// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// Bridge is the host-side collaborator the engine calls out through for
// every effect beyond pure computation (doc.go's "Design Boundaries",
// §4.4.6, §5 of the design notes carried from the source specification):
// rendering an element tree, persisting/restoring [*Node] state across a
// hot reload, and attaching externally-produced input event streams. A
// playground UI, a native renderer, or a plain console driver all
// implement the same narrow surface.
type Bridge interface {
	// Render is called once per firing of a top-level binding whose value
	// is presented to the user, with the binding's own [PersistenceId] and
	// its current [Value] (typically a `*Tag`/`*Object` element tree).
	Render(id PersistenceId, tree Value)

	// Storage is consulted by [VFS] hot reload to persist and restore HOLD
	// accumulator state across a reload, keyed by the binding's
	// [PersistenceId] (§4.5).
	Storage() Storage

	// InputEvents returns the named externally-produced event stream
	// (e.g. a UI click stream, a timer the host itself drives), or false
	// if name is not attached. A program references it by `LINK { name }`
	// (§4.3's LINK entry).
	InputEvents(name string) (Stream, bool)
}

// Storage persists [Value]s keyed by [PersistenceId], surviving across a
// hot reload (§4.5: "migrates state by matching the resulting ids").
type Storage interface {
	Get(id PersistenceId) (Value, bool)
	Put(id PersistenceId, v Value)
}

// MemoryStorage is an in-process [Storage] backed by a guarded map — the
// implementation `cmd/boon`'s console bridge uses, and a reasonable
// default for embedders that don't need cross-process durability.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[PersistenceId]Value
}

// NewMemoryStorage returns an empty [*MemoryStorage].
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[PersistenceId]Value)}
}

// Get implements [Storage].
func (s *MemoryStorage) Get(id PersistenceId) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[id]
	return v, ok
}

// Put implements [Storage].
func (s *MemoryStorage) Put(id PersistenceId, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[id] = v
}

// ConsoleBridge is the minimal [Bridge] `cmd/boon` drives: [Render] prints
// a one-line-per-firing trace of a binding's value to the configured
// [SLogger], storage is a [*MemoryStorage], and input events are whatever
// named [Stream]s the caller registers via [ConsoleBridge.Attach] (SPEC_FULL.md
// §5's "minimal REPL/CLI" supplemented feature).
type ConsoleBridge struct {
	logger  SLogger
	storage *MemoryStorage

	mu     sync.RWMutex
	inputs map[string]Stream
}

// NewConsoleBridge returns a [*ConsoleBridge] logging renders through
// logger (DefaultSLogger's no-op if nil) and backed by a fresh
// [*MemoryStorage].
func NewConsoleBridge(logger SLogger) *ConsoleBridge {
	if logger == nil {
		logger = DefaultSLogger()
	}
	return &ConsoleBridge{logger: logger, storage: NewMemoryStorage(), inputs: make(map[string]Stream)}
}

// Render implements [Bridge].
func (b *ConsoleBridge) Render(id PersistenceId, tree Value) {
	b.logger.Info("render", slog.String("id", id.String()), slog.String("value", FormatValue(tree)))
}

// Storage implements [Bridge].
func (b *ConsoleBridge) Storage() Storage {
	return b.storage
}

// Attach registers a named input event stream, making it resolvable via
// `LINK { name }` once wired into an [Evaluator]'s [LinkRegistry] by
// [AttachInputs].
func (b *ConsoleBridge) Attach(name string, s Stream) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inputs[name] = s
}

// InputEvents implements [Bridge].
func (b *ConsoleBridge) InputEvents(name string) (Stream, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.inputs[name]
	return s, ok
}

// AttachInputs wires every named stream bridge exposes into links as a
// long-lived [*Node], so `LINK { name }` anywhere in the evaluated program
// resolves to it (§4.3's LINK entry: aliasing that works across an
// element tree, not only within lexical scope). Names are wired in
// lexicographic order for deterministic node-creation logging.
func AttachInputs(ctx context.Context, bridge Bridge, names []string, links *LinkRegistry, clock *Clock, logger SLogger, errCl ErrClassifier) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	for _, name := range sorted {
		s, ok := bridge.InputEvents(name)
		if !ok {
			continue
		}
		id := PersistenceId{Source: "bridge-input", Ordinal: 0}.Child(name, 0)
		node := NewNode(ctx, id, "input:"+name, EagerActor, s, clock, logger, errCl)
		links.Link(name, node)
	}
}

// RenderLoop subscribes to node and calls bridge.Render with its id and
// every emitted value until ctx is cancelled or node closes. Run this in
// its own goroutine for each top-level binding a program wants presented
// to the user — `cmd/boon` runs it for every top-level binding.
func RenderLoop(ctx context.Context, bridge Bridge, id PersistenceId, node *Node) {
	sub := node.Subscribe(ctx)
	defer sub.Close()
	for {
		env, ok := sub.Recv(ctx)
		if !ok {
			return
		}
		bridge.Render(id, env.Payload)
	}
}

// restoreHoldState loads a persisted accumulator value for id from
// storage, falling back to fresh if nothing was previously stored — the
// hook [VFS] hot reload uses to migrate HOLD state across a reload
// (§4.5). Kept here, next to [Storage], rather than in vfs.go, since it
// is the one place the bridge's storage contract and the evaluator's
// HoldExpr lowering meet.
func restoreHoldState(storage Storage, id PersistenceId, fresh Value) Value {
	if storage == nil {
		return fresh
	}
	if prior, ok := storage.Get(id); ok {
		return prior
	}
	storage.Put(id, fresh)
	return fresh
}

// persistHoldState snapshots current into storage under id. The HOLD
// lowering calls it each time it instantiates the body, with the value
// that round starts from: the initial value, then every committed value of
// a body that repeats. The single value committed by a body that runs
// only once is not stored, so a reload restores that body's starting value
// and evaluates it once more.
func persistHoldState(storage Storage, id PersistenceId, current Value) {
	if storage == nil {
		return
	}
	storage.Put(id, current)
}
