// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import "sync"

// LinkRegistry resolves `LINK { alias }` declarations (§4.3, §6 glossary:
// "named alias wiring one node's stream to multiple consumers identified
// by alias"). Alias resolution happens globally within a containing
// element tree (§4.3's LINK entry), so a single registry instance is
// shared by every node instantiated from the same tree.
//
// This implements the "weak-style alias: reference-and-lookup, never
// ownership" rule (§3's ownership design terms): a LinkRegistry never
// keeps a [*Node] alive on its own — it is the binding that introduced
// the node, plus its subscribers, that do.
type LinkRegistry struct {
	mu      sync.RWMutex
	aliases map[string]*Node
}

// NewLinkRegistry returns an empty registry.
func NewLinkRegistry() *LinkRegistry {
	return &LinkRegistry{aliases: make(map[string]*Node)}
}

// Link registers alias as reachable via node. Implements `LINK { alias }`
// attached to node's binding. Re-registering the same alias replaces the
// previous target, matching hot-reload's module-diffing rule (a reload
// that changes which node owns an alias simply rebinds it).
func (r *LinkRegistry) Link(alias string, node *Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[alias] = node
}

// Resolve looks up alias, returning the [*Node] it currently points to
// and whether it is registered. Multiple consumers calling Resolve with
// the same alias all subscribe to the same underlying Node (§4.3's LINK
// entry).
func (r *LinkRegistry) Resolve(alias string) (*Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.aliases[alias]
	return n, ok
}

// Unlink removes alias from the registry, used when a hot reload drops
// the binding that declared it.
func (r *LinkRegistry) Unlink(alias string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.aliases, alias)
}
