// internal/appcore/core.go
package appcore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"seekone/internal/barcode"
	"seekone/internal/cli"
	"seekone/internal/cmdutil"
	"seekone/internal/correct"
	"seekone/internal/pipeline"
	"seekone/internal/runutil"
	"seekone/internal/stats"
	"seekone/internal/structure"
	"seekone/internal/version"
	"seekone/internal/whitelist"
	"seekone/internal/writers"
)

// Run executes the barcode step for validated options and returns the exit
// code.
func Run(parent context.Context, stdout, stderr io.Writer, o cli.Options) int {
	log := cmdutil.NewLogger(stderr, o.Quiet, o.Verbose)
	log.WithFields(logrus.Fields{
		"sample":    o.Sample,
		"structure": structure.Format(o.Segments),
		"barcodes":  structure.Count(o.Segments, structure.Barcode),
		"linkers":   structure.Count(o.Segments, structure.Linker),
		"pairs":     len(o.FQ1),
	}).Info("barcode step started")

	cache := whitelist.NewCache(whitelist.CacheSize, log)
	steps, err := correct.Prepare(o.Segments, correct.Options{
		Barcodes: o.Barcodes,
		Linkers:  o.Linkers,
		B:        o.B,
		L:        o.L,
	}, cache)
	if err != nil {
		log.Error(err)
		return 2
	}
	logTables(log, steps, cache)
	log.WithField("read1_bases", structure.MinReadLength(o.Segments)).Debug("read-1 layout length before shifts")

	proc := barcode.New(barcode.Config{
		Steps:     steps,
		Shift:     o.Shift,
		Pattern:   o.Pattern,
		Adapter:   o.BackAdapter(),
		MinLength: o.MinLength,
	})

	out, err := writers.Open(o.Out, stdout)
	if err != nil {
		log.Error(err)
		return 3
	}

	pairs := make([]pipeline.FilePair, len(o.FQ1))
	for i := range o.FQ1 {
		pairs[i] = pipeline.FilePair{R1: o.FQ1[i], R2: o.FQ2[i]}
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var agg stats.Aggregator
	perr := cmdutil.RunStream[stats.Delta](
		ctx,
		pipeline.Config{Workers: runutil.EffectiveWorkers(o.Core), Log: log},
		pipeline.FileSource(pairs, o.BufferBytes, log),
		proc.ProcessChunk,
		out,
		func(d stats.Delta) int64 {
			n := d.Stat[stats.Total]
			agg.Update(d)
			return n
		},
		cmdutil.NewProgress(stderr, o.Progress && !o.Quiet),
	)

	cerr := out.Close()
	if perr == nil && writers.IsBrokenPipe(cerr) {
		log.Debug("output closed early by reader")
		perr = nil
	} else if perr == nil && cerr != nil {
		perr = fmt.Errorf("closing %s: %w", o.Out, cerr)
	}

	if perr != nil {
		if errors.Is(perr, context.Canceled) {
			log.Warn("interrupted")
			return 130
		}
		if writers.IsBrokenPipe(perr) {
			return 0
		}
		log.Error(perr)
		return 3
	}

	if err := agg.SaveFile(o.Summary, version.Version); err != nil {
		log.Error(err)
		return 3
	}
	log.WithFields(logrus.Fields{
		"chunks":  agg.Chunks(),
		"total":   humanize.Comma(agg.Count(stats.Total)),
		"valid":   humanize.Comma(agg.Count(stats.Valid)),
		"summary": o.Summary,
	}).Info("barcode step done")
	return 0
}

func logTables(log logrus.FieldLogger, steps []correct.Step, cache *whitelist.Cache) {
	for i, s := range steps {
		if s.Table == nil {
			continue
		}
		log.WithFields(logrus.Fields{
			"segment":    i,
			"kind":       s.Kind.String(),
			"source":     s.Table.Source,
			"exact":      len(s.Table.Exact),
			"mismatch":   len(s.Table.Mismatch),
			"indel":      len(s.Table.Indel),
			"collisions": s.Table.Collisions,
		}).Debug("correction table")
	}
	log.WithField("tables", cache.Builds()).Info("prepare done")
}
