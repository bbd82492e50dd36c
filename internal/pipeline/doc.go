// Package pipeline runs a per-chunk transform over paired inputs with a
// fixed pool of workers and writes the results in input order.
//
// Three roles talk only through channels:
//   - the reader frames input into index-tagged chunks and hands each one to
//     a worker that announced itself on the shared ready queue;
//   - workers transform chunks and report (index, bytes, stats);
//   - the orchestrator (the caller of Run) buffers results by index, flushes
//     every contiguous prefix, and folds stats as they arrive.
//
// The only contract to implement is Func. Failures in the reader or a worker
// become error signals that fail the whole run; output already flushed stays.
package pipeline
