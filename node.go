// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"context"
	"sync"
)

// ActorKind distinguishes the two actor disciplines named in §4.4.1–§4.4.2.
type ActorKind int

const (
	// EagerActor pushes every emission to every subscriber as soon as it
	// arrives; a late subscriber is caught up with the most recently seen
	// value, if any (this is what lets `LATEST` and plain bindings behave
	// as "most-recent-wins" fan-in).
	EagerActor ActorKind = iota
	// LazyActor appends each of its source's emissions to a shared log as
	// it arrives; the source is read continuously, not on demand. Each
	// subscriber tracks its own read cursor into the log, so slow and fast
	// consumers of the same lazy Node never interfere with each other
	// (§4.4.2).
	LazyActor
)

// Subscription is a live attachment to a [Node]. Callers obtain one via
// [Node.Subscribe] and must call Close when done to let the Node release
// any resources held only for that subscriber.
type Subscription interface {
	// Recv blocks until the next value is available, ctx is cancelled, or
	// the underlying Node's source stream is exhausted (ok is false in the
	// latter two cases).
	Recv(ctx context.Context) (Envelope, bool)
	// Close detaches the subscription from its Node.
	Close()
}

// Node is a running instance of a resolved binding: it owns a [Stream],
// drives it with a shared [Clock], and fans emissions out to however many
// subscribers attach over the Node's lifetime (§4.4). A Node is always
// built from an [Infinite] stream — [NewNode] enforces this via
// [AssertInfinite], since a long-lived actor bound to a stream that can
// terminate would leave its subscribers hanging (§4.4.4).
type Node struct {
	id     PersistenceId
	kind   ActorKind
	clock  *Clock
	logger SLogger
	errCl  ErrClassifier
	name   string

	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	current Envelope
	hasCur  bool
	closed  bool

	// eager fan-out
	eagerSubs map[*eagerSub]struct{}

	// lazy shared log
	log     []Envelope
	logCond *sync.Cond
}

// NewNode constructs and starts a [Node] of the given kind reading from
// source, ticking emissions through clock. name and id are used only for
// diagnostics and logging (a single `nodeStart` debug event). The
// returned Node's background goroutine runs until ctx is cancelled or
// source is exhausted.
func NewNode(ctx context.Context, id PersistenceId, name string, kind ActorKind, source Stream, clock *Clock, logger SLogger, errCl ErrClassifier) *Node {
	AssertInfinite(source)
	nctx, cancel := context.WithCancel(ctx)
	n := &Node{
		id:        id,
		kind:      kind,
		clock:     clock,
		logger:    logger,
		errCl:     errCl,
		name:      name,
		cancel:    cancel,
		done:      make(chan struct{}),
		eagerSubs: make(map[*eagerSub]struct{}),
	}
	n.logCond = sync.NewCond(&n.mu)
	t0 := clock.Now()
	if logger != nil {
		logger.Debug("nodeStart", "name", name, "id", id.String(), "t0", t0)
	}
	go n.run(nctx, source)
	return n
}

func (n *Node) run(ctx context.Context, source Stream) {
	defer close(n.done)
	in := source.Open(ctx, n.clock)
	for {
		select {
		case env, ok := <-in:
			if !ok {
				n.markClosed()
				return
			}
			n.deliver(env)
		case <-ctx.Done():
			n.markClosed()
			return
		}
	}
}

func (n *Node) markClosed() {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()
	n.logCond.Broadcast()
}

func (n *Node) deliver(env Envelope) {
	n.mu.Lock()
	n.current = env
	n.hasCur = true
	if n.kind == LazyActor {
		n.log = append(n.log, env)
		n.mu.Unlock()
		n.logCond.Broadcast()
		return
	}
	subs := make([]*eagerSub, 0, len(n.eagerSubs))
	for s := range n.eagerSubs {
		subs = append(subs, s)
	}
	n.mu.Unlock()
	for _, s := range subs {
		s.push(env)
	}
}

// Subscribe attaches a new [Subscription] to the Node. An eager Node
// immediately hands the subscriber its current value, if one has been
// emitted; a lazy Node starts the subscriber's cursor at the current end
// of the log, so it only sees emissions from this point forward.
func (n *Node) Subscribe(ctx context.Context) Subscription {
	switch n.kind {
	case LazyActor:
		return n.subscribeLazy()
	default:
		return n.subscribeEager(ctx)
	}
}

// Current returns the most recently emitted [Envelope] and whether one
// exists yet. Used by eager combinators (LATEST, plain bindings) that
// need to read a Node's value without subscribing, e.g. when evaluating a
// fresh downstream actor that should start from "whatever is current".
func (n *Node) Current() (Envelope, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current, n.hasCur
}

// Shutdown cancels the Node's background goroutine and blocks until it
// has exited (§4.4.5 cancellation). Safe to call more than once.
func (n *Node) Shutdown() {
	n.cancel()
	<-n.done
}

// --- eager subscription -----------------------------------------------

// eagerSub is a mailbox of capacity 1 holding only the most recent
// undelivered value — "most-recent-wins" delivery, matching the LATEST
// combinator's fan-in semantics (§4.3's LATEST entry).
type eagerSub struct {
	n      *Node
	ch     chan Envelope
	closed chan struct{}
	once   sync.Once
}

func (n *Node) subscribeEager(ctx context.Context) Subscription {
	s := &eagerSub{n: n, ch: make(chan Envelope, 1), closed: make(chan struct{})}
	n.mu.Lock()
	cur, hasCur := n.current, n.hasCur
	closed := n.closed
	n.eagerSubs[s] = struct{}{}
	n.mu.Unlock()
	if hasCur {
		s.push(cur)
	}
	if closed {
		s.once.Do(func() { close(s.closed) })
	}
	return s
}

// push overwrites any undelivered value in the mailbox with env, giving
// most-recent-wins semantics under back-pressure.
func (s *eagerSub) push(env Envelope) {
	for {
		select {
		case s.ch <- env:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *eagerSub) Recv(ctx context.Context) (Envelope, bool) {
	select {
	case env := <-s.ch:
		return env, true
	case <-s.closed:
		select {
		case env := <-s.ch:
			return env, true
		default:
			return Envelope{}, false
		}
	case <-ctx.Done():
		return Envelope{}, false
	}
}

func (s *eagerSub) Close() {
	s.n.mu.Lock()
	delete(s.n.eagerSubs, s)
	s.n.mu.Unlock()
}

// --- lazy subscription --------------------------------------------------

// lazySub tracks a private read cursor into its Node's shared log, so
// multiple lazy consumers of the same Node (e.g. two downstream HOLD
// bodies reading the same upstream) each advance independently (§4.4.2).
type lazySub struct {
	n      *Node
	cursor int
}

func (n *Node) subscribeLazy() Subscription {
	n.mu.Lock()
	cursor := len(n.log)
	n.mu.Unlock()
	return &lazySub{n: n, cursor: cursor}
}

func (s *lazySub) Recv(ctx context.Context) (Envelope, bool) {
	s.n.mu.Lock()
	for s.cursor >= len(s.n.log) && !s.n.closed {
		if ctx.Err() != nil {
			s.n.mu.Unlock()
			return Envelope{}, false
		}
		waitCh := make(chan struct{})
		go func() {
			<-ctx.Done()
			s.n.logCond.Broadcast()
			close(waitCh)
		}()
		s.n.logCond.Wait()
		select {
		case <-waitCh:
		default:
		}
	}
	if s.cursor >= len(s.n.log) {
		s.n.mu.Unlock()
		return Envelope{}, false
	}
	env := s.n.log[s.cursor]
	s.cursor++
	s.n.mu.Unlock()
	return env, true
}

func (s *lazySub) Close() {}
