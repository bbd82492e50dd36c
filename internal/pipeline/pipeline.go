// internal/pipeline/pipeline.go
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

var (
	// ErrUnflushed means every worker finished but some chunk never arrived.
	ErrUnflushed = errors.New("pipeline: chunks left unflushed")
	// ErrWorkerPanic wraps a panic recovered in the reader or a worker.
	ErrWorkerPanic = errors.New("pipeline: panic")
)

// Func transforms one paired chunk, writing output to out and returning the
// chunk's statistics. It runs concurrently on many goroutines and must not
// share mutable state.
type Func[S any] func(c1, c2 []byte, out io.Writer) (S, error)

// Config controls the worker pool.
type Config struct {
	Workers int // number of worker goroutines (>=1)
	Log     logrus.FieldLogger
}

type signal int

const (
	sigChunk signal = iota
	sigDone
	sigError
)

type work struct {
	sig    signal
	index  int
	c1, c2 []byte
	err    error
}

type result[S any] struct {
	sig    signal
	worker int
	index  int
	data   []byte
	stat   S
	err    error
}

// Run streams src through fn on cfg.Workers workers and writes the outputs to
// out in chunk order. merge is called on the calling goroutine once per
// chunk, in completion order, with that chunk's statistics.
func Run[S any](
	parent context.Context,
	cfg Config,
	src Source,
	fn Func[S],
	out io.Writer,
	merge func(index int, s S),
) error {
	if err := parent.Err(); err != nil {
		return err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	log := cfg.Log
	if log == nil {
		log = logrus.New()
	}
	n := cfg.Workers

	ctx, cancel := context.WithCancel(parent)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	ready := make(chan int, n)
	inboxes := make([]chan work, n)
	for i := range inboxes {
		inboxes[i] = make(chan work, 1)
	}
	results := make(chan result[S], n)

	wg.Add(n + 1)
	go func() {
		defer wg.Done()
		readLoop(ctx, src, ready, inboxes, log)
	}()
	for i := 0; i < n; i++ {
		go func(id int) {
			defer wg.Done()
			workLoop(ctx, id, fn, ready, inboxes[id], results, log)
		}(i)
	}

	w := NewOrderedWriter(out)
	live := n
	for live > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-results:
			switch r.sig {
			case sigDone:
				live--
				log.WithField("worker", r.worker).Debug("worker retired")
			case sigError:
				return r.err
			default:
				if err := w.Write(r.index, r.data); err != nil {
					return err
				}
				if merge != nil {
					merge(r.index, r.stat)
				}
			}
		}
	}
	if !w.WroteEverything() {
		return fmt.Errorf("%w: %d chunk(s) waiting for chunk %d", ErrUnflushed, w.Pending(), w.Next())
	}
	log.WithFields(logrus.Fields{"chunks": w.Next(), "written": humanize.IBytes(uint64(w.Written()))}).
		Debug("pipeline drained")
	return nil
}

func takeReady(ctx context.Context, ready <-chan int) (int, error) {
	select {
	case id := <-ready:
		return id, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func deliver(ctx context.Context, inbox chan<- work, w work) error {
	select {
	case inbox <- w:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readLoop hands each chunk to a worker that asked for one, then sends every
// worker one terminal signal: done, or the error that stopped the reader.
func readLoop(ctx context.Context, src Source, ready <-chan int, inboxes []chan work, log logrus.FieldLogger) {
	index := 0
	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("%w in reader: %v", ErrWorkerPanic, p)
			}
		}()
		return src(func(c1, c2 []byte) error {
			id, err := takeReady(ctx, ready)
			if err != nil {
				return err
			}
			if err := deliver(ctx, inboxes[id], work{sig: sigChunk, index: index, c1: c1, c2: c2}); err != nil {
				return err
			}
			index++
			return nil
		})
	}()
	if ctx.Err() != nil {
		return
	}

	final := work{sig: sigDone}
	if err != nil {
		log.WithError(err).WithField("chunk", index).Error("reader failed")
		final = work{sig: sigError, err: fmt.Errorf("reader: %w", err)}
	} else {
		log.WithField("chunks", index).Debug("reader finished")
	}
	for range inboxes {
		id, err := takeReady(ctx, ready)
		if err != nil {
			return
		}
		if deliver(ctx, inboxes[id], final) != nil {
			return
		}
	}
}

func workLoop[S any](
	ctx context.Context,
	id int,
	fn Func[S],
	ready chan<- int,
	inbox <-chan work,
	results chan<- result[S],
	log logrus.FieldLogger,
) {
	send := func(r result[S]) bool {
		r.worker = id
		select {
		case results <- r:
			return true
		case <-ctx.Done():
			return false
		}
	}
	for {
		select {
		case ready <- id:
		case <-ctx.Done():
			return
		}
		var w work
		select {
		case w = <-inbox:
		case <-ctx.Done():
			return
		}
		switch w.sig {
		case sigDone:
			send(result[S]{sig: sigDone})
			return
		case sigError:
			send(result[S]{sig: sigError, err: w.err})
			return
		}

		var buf bytes.Buffer
		st, err := call(fn, w.c1, w.c2, &buf)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{"worker": id, "chunk": w.index}).Error("worker failed")
			send(result[S]{sig: sigError, index: w.index, err: fmt.Errorf("chunk %d: %w", w.index, err)})
			return
		}
		if !send(result[S]{sig: sigChunk, index: w.index, data: buf.Bytes(), stat: st}) {
			return
		}
	}
}

func call[S any](fn Func[S], c1, c2 []byte, out io.Writer) (s S, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w in worker: %v", ErrWorkerPanic, p)
		}
	}()
	return fn(c1, c2, out)
}
