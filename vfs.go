// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manifest is a module's optional `boon.yaml` descriptor: the entry file
// to load and the input names it expects a [Bridge] to supply (§4.5's
// "optional manifest" mentioned alongside hot reload). A module with no
// manifest file on disk gets the zero value's defaults applied by
// [LoadManifest].
type Manifest struct {
	Entry  string   `yaml:"entry"`
	Inputs []string `yaml:"inputs"`
}

// LoadManifest reads path as YAML into a [Manifest]. If path does not
// exist, it returns a manifest defaulting Entry to "main.bn" and no
// declared inputs, rather than an error — a manifest is a convenience,
// not a requirement.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Manifest{Entry: "main.bn"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if m.Entry == "" {
		m.Entry = "main.bn"
	}
	return &m, nil
}

// VFS loads a module's source from a directory, tracks the resulting
// actor graph, and drives hot reload. A reload does not diff the old and
// new programs: it builds a fresh actor graph and cancels the previous
// one, and HOLD state carries over only through the bridge's [Storage],
// keyed by [PersistenceId] (see [VFS.Reload]). The zero value is not
// usable; use [NewVFS].
type VFS struct {
	dir      string
	bridge   Bridge
	clock    *Clock
	logger   SLogger
	errCl    ErrClassifier
	links    *LinkRegistry

	mu      sync.Mutex
	current *loadedModule
}

type loadedModule struct {
	manifest *Manifest
	prog     *Program
	ids      *PersistenceTable
	nodes    map[string]*Node
	cancel   context.CancelFunc
}

// NewVFS returns a [*VFS] rooted at dir, sharing bridge/clock/logger/errCl
// across every (re)load so HOLD state and LINK aliases survive a reload —
// a nil clock/logger/errCl takes the package default.
func NewVFS(dir string, bridge Bridge, clock *Clock, logger SLogger, errCl ErrClassifier) *VFS {
	if clock == nil {
		clock = NewClock(0)
	}
	if logger == nil {
		logger = DefaultSLogger()
	}
	if errCl == nil {
		errCl = DefaultErrClassifier
	}
	return &VFS{dir: dir, bridge: bridge, clock: clock, logger: logger, errCl: errCl, links: NewLinkRegistry()}
}

// Load reads the manifest (if any), parses and resolves the entry file,
// lowers it through a fresh [*Evaluator], and replaces any previously
// loaded module. Returns the live top-level bindings by name.
func (v *VFS) Load(ctx context.Context) (map[string]*Node, error) {
	manifest, err := LoadManifest(filepath.Join(v.dir, "boon.yaml"))
	if err != nil {
		return nil, err
	}
	entryPath := filepath.Join(v.dir, manifest.Entry)
	src, err := os.ReadFile(entryPath)
	if err != nil {
		return nil, fmt.Errorf("reading entry %s: %w", entryPath, err)
	}

	prog, ids, err := parseAndResolve(manifest.Entry, string(src))
	if err != nil {
		return nil, err
	}

	if v.bridge != nil {
		AttachInputs(ctx, v.bridge, manifest.Inputs, v.links, v.clock, v.logger, v.errCl)
	}

	moduleCtx, cancel := context.WithCancel(ctx)
	ev := NewEvaluator(ids, v.links, v.clock, v.logger, v.errCl)
	if v.bridge != nil {
		ev.SetBridge(v.bridge)
	}
	nodes, err := ev.Evaluate(moduleCtx, prog)
	if err != nil {
		cancel()
		return nil, err
	}

	v.mu.Lock()
	prior := v.current
	v.current = &loadedModule{manifest: manifest, prog: prog, ids: ids, nodes: nodes, cancel: cancel}
	v.mu.Unlock()

	if prior != nil {
		prior.cancel()
	}
	return nodes, nil
}

// parseAndResolve runs the lex/parse/scope-resolve/persistence-resolve
// pipeline (§4.1–§4.2) over one source file.
func parseAndResolve(sourceID, src string) (*Program, *PersistenceTable, error) {
	lex, err := NewLexer(sourceID, src)
	if err != nil {
		return nil, nil, err
	}
	parser, err := NewParser(lex)
	if err != nil {
		return nil, nil, err
	}
	prog, err := parser.ParseProgram(sourceID)
	if err != nil {
		return nil, nil, err
	}
	if err := ResolveScopes(prog); err != nil {
		return nil, nil, err
	}
	ids := ResolvePersistence(prog)
	return prog, ids, nil
}

// Reload re-runs [VFS.Load]. Every binding whose [PersistenceId] is
// unchanged between the old and new program picks its HOLD state back up
// via [Evaluator]'s bridge-backed storage (§4.5) rather than resetting —
// the new [*Node] graph is a fresh lowering, but the ids it's lowered
// under are the stable coordinate the storage layer keys on, so identical
// ids read back identical prior values regardless of which [*Node]
// instance wrote them.
func (v *VFS) Reload(ctx context.Context) (map[string]*Node, error) {
	return v.Load(ctx)
}

// Close cancels the currently loaded module's evaluation context, if any.
func (v *VFS) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current != nil {
		v.current.cancel()
		v.current = nil
	}
}

// Current returns the most recently loaded module's top-level bindings,
// or nil if nothing has been loaded yet.
func (v *VFS) Current() map[string]*Node {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return nil
	}
	return v.current.nodes
}
