package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ancient-ibd/gtnorm/internal/duckdb"
	"github.com/ancient-ibd/gtnorm/internal/genotype"
	"github.com/ancient-ibd/gtnorm/internal/normalize"
)

func (a *app) runNormalize(inputPath, outputPath string) error {
	n := normalize.New(normalize.Options{
		MaxErrors:    a.v.GetInt("validate.max_errors"),
		SkipPreamble: a.v.GetBool("input.skip_preamble"),
	})
	n.SetLogger(a.logger)

	recordHistory := a.v.GetBool("history.enabled")
	storeGenotypes := recordHistory && a.v.GetBool("history.store_genotypes")

	var records []genotype.Record
	if storeGenotypes {
		n.SetRecordHook(func(r genotype.Record) error {
			records = append(records, r)
			return nil
		})
	}

	started := time.Now()

	fp := duckdb.InputFingerprint{Path: inputPath}
	if recordHistory {
		if hashed, err := duckdb.FingerprintFile(inputPath); err == nil {
			fp = hashed
			a.noteUnchangedInput(fp)
		}
	}

	sum, err := n.NormalizeFile(inputPath, outputPath)
	if err != nil && sum.OutputCreated && !a.v.GetBool("output.keep_partial") {
		if rmErr := os.Remove(outputPath); rmErr != nil {
			a.logger.Warn("could not remove partial output",
				zap.String("output", outputPath), zap.Error(rmErr))
		}
	}

	if recordHistory {
		run := newRun(fp, outputPath, started, sum, err)
		if herr := a.saveRun(run, records); herr != nil {
			a.logger.Warn("could not record run history", zap.Error(herr))
		}
	}

	return err
}

// newRun describes a finished normalization for the history store.
func newRun(fp duckdb.InputFingerprint, outputPath string, started time.Time, sum normalize.Summary, err error) *duckdb.Run {
	run := &duckdb.Run{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Input:      fp,
		OutputPath: outputPath,
		Status:     duckdb.StatusOK,
		Records:    int64(sum.Records),
		NoCalls:    int64(sum.NoCalls),
	}
	if err != nil {
		run.Status = duckdb.StatusFailed
		run.ErrorKind = genotype.KindOf(err).String()
		run.ErrorLine = int64(genotype.LineOf(err))
		run.ErrorMessage = err.Error()
	}
	return run
}

func (a *app) openHistory() (*duckdb.Store, error) {
	path := a.v.GetString("history.path")
	store, err := duckdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	return store, nil
}

func (a *app) saveRun(run *duckdb.Run, records []genotype.Record) error {
	store, err := a.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.RecordRun(run)
	if err != nil {
		return err
	}
	if run.OK() {
		if err := store.AppendGenotypes(id, records); err != nil {
			return err
		}
	}
	a.logger.Debug("recorded run",
		zap.Int64("run_id", id),
		zap.String("status", run.Status),
		zap.String("history", store.Path()))
	return nil
}

// noteUnchangedInput logs when the same bytes at the same path already
// passed in an earlier run.
func (a *app) noteUnchangedInput(fp duckdb.InputFingerprint) {
	store, err := a.openHistory()
	if err != nil {
		a.logger.Warn("could not read run history", zap.Error(err))
		return
	}
	defer store.Close()

	prev, err := store.LastSuccessFor(fp)
	if err != nil {
		a.logger.Warn("could not read run history", zap.Error(err))
		return
	}
	if prev != nil {
		a.logger.Info("input unchanged since an earlier successful run",
			zap.Int64("run_id", prev.ID),
			zap.Time("finished_at", prev.FinishedAt),
			zap.String("output", prev.OutputPath))
	}
}
