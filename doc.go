// SPDX-License-Identifier: GPL-3.0-or-later

// Package boon implements the reactive dataflow engine for the Boon
// language: a UTF-8 lexer and Pratt parser, a lexical scope resolver and
// a persistence-id resolver, an evaluator that lowers a resolved AST into
// a graph of actors and streams, the actor/stream engine core itself, and
// the combinator/stdlib surface (LATEST, HOLD, WHEN, WHILE, THEN, LINK,
// PULSES, FLUSH, list operations, Math/Text/Bits/Bytes).
//
// # Core Abstraction
//
// The package is built around [Stream], a typed push-only sequence with
// an explicit [Lifetime] marker, and [Node], the actor wrapping a Stream
// into a long-lived, multi-subscriber binding. The evaluator lowers every
// expression — a pipe call, a combinator body, a stdlib function — to a
// Stream; `a |> f(args)` composes by constructing f's Stream with a as
// one of its inputs, not through a separate function-composition layer.
//
// # Available Primitives
//
// Engine core:
//   - [Node]: the actor behind every binding (eager or lazy, see [ActorKind])
//   - [Stream]: a typed, push-only sequence with an explicit [Lifetime] marker
//   - [Clock]: the process-global Lamport counter stamping every [Envelope]
//   - [Subscription]: a read endpoint obtained from a [Node]
//
// Combinators:
//   - [Latest], [Hold], [When], [While], [Then], [LinkRegistry], [Pulses], [Flush]
//   - List operations: [TransformCache.ListMap], [ListRetain], [ListSortBy], [ListEvery],
//     [ListAny], [ListAppend], [ListFold]
//
// Front end:
//   - [Lexer] / [Parser]: source text to [Token] stream to [Program]
//   - [ResolveScopes] / [ResolvePersistence]: name and identity resolution
//   - [Evaluator]: resolved AST to actor graph
//
// # Stream Lifetime Discipline
//
// This is the single invariant every other rule in the engine bends around
// (§4.4.4 of the design notes carried from the source specification): a
// [Node] may only be constructed from an [Stream] whose [Lifetime] is
// [Infinite]. [ConstantStream] and [KeepAlive] are the two primitives that
// produce or coerce to an infinite stream; dropping a [Finite] stream into
// a long-lived node is the single most common source of "subscriber raced
// with shutdown" bugs this design exists to prevent.
//
// # Observability
//
// All primitives support structured logging via [SLogger] (compatible with
// [log/slog]). By default, logging is disabled: pass a real [*slog.Logger]
// as the logger argument of [NewVFS], [NewEvaluator] or [NewNode] to
// enable it. Error classification is configurable via [ErrClassifier]; by
// default a no-op classifier is used. Each [Node] logs a `nodeStart` event
// with a `t0` clock field when it starts; there is no matching done event.
//
// Use [NewPersistenceID] or the resolver's deterministic assignment to
// attach a stable identifier to a logger with `*slog.Logger.With`, the
// same correlation discipline this package's ancestor library uses for
// span ids.
//
// # Concurrency model
//
// Single-threaded cooperative by default: every [Node] runs its own actor
// loop as an independent goroutine, but the only suspension points are
// channel send/receive and timer waits (see [Node]). There is no shared
// mutable state between nodes; [Clock] and the module registry in [VFS]
// are the only process-wide resources, each with a short critical section.
//
// # Design Boundaries
//
// This package is the engine only. The playground UI, the CodeMirror
// integration, the DOM/Zoon rendering layer, browser-automation tooling,
// an FPGA/HDL transpiler, documentation tooling, and alternative engine
// backends are host-side collaborators reached exclusively through
// [Bridge]; none of that surface lives here.
package boon
