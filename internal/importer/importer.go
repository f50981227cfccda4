// Package importer implements the one-shot agent import: it reads a
// local JSON array of agent records and pushes them to the backend in
// batches.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/estia-cy/estia/pkg/types"
)

// Inserter pushes one batch of records to the backend.
type Inserter interface {
	Insert(ctx context.Context, agents []types.RawAgent) error
}

// Result summarizes an import run.
type Result struct {
	RunID         string        // Unique identifier for this run
	Total         int           // Records read from the input file
	Skipped       int           // Records dropped by validation
	Imported      int           // Records accepted by the backend
	Failed        int           // Records in batches the backend rejected
	Batches       int           // Batches attempted
	FailedBatches int           // Batches the backend rejected
	Duration      time.Duration // Wall time for the whole run
}

// Summary renders the run for terminal output.
func (r Result) Summary() string {
	return fmt.Sprintf("run %s: imported %s of %s records in %d batches (%d failed, %d skipped) in %s",
		r.RunID,
		humanize.Comma(int64(r.Imported)),
		humanize.Comma(int64(r.Total)),
		r.Batches,
		r.Failed,
		r.Skipped,
		r.Duration.Round(time.Millisecond))
}

// Importer reads agent records from a JSON file and inserts them in
// fixed-size batches, pacing requests so a large import does not
// saturate the backend.
type Importer struct {
	inserter  Inserter
	batchSize int
	limiter   *rate.Limiter
}

// New creates an importer. batchSize defaults to 50 and batchesPerSecond
// to 2 when non-positive.
func New(inserter Inserter, batchSize, batchesPerSecond int) *Importer {
	if batchSize <= 0 {
		batchSize = 50
	}
	if batchesPerSecond <= 0 {
		batchesPerSecond = 2
	}
	return &Importer{
		inserter:  inserter,
		batchSize: batchSize,
		limiter:   rate.NewLimiter(rate.Limit(batchesPerSecond), 1),
	}
}

// ImportFile reads the JSON array at path and imports it. A batch that
// the backend rejects is counted and skipped; the run continues with
// the next batch.
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("importer: failed to read %s: %w", path, err)
	}

	var raws []types.RawAgent
	if err := json.Unmarshal(data, &raws); err != nil {
		return Result{}, fmt.Errorf("importer: %s is not a JSON agent array: %w", path, err)
	}

	return im.Import(ctx, raws)
}

// Import pushes the given records in batches.
func (im *Importer) Import(ctx context.Context, raws []types.RawAgent) (Result, error) {
	start := time.Now()
	result := Result{
		RunID: uuid.New().String(),
		Total: len(raws),
	}

	valid := make([]types.RawAgent, 0, len(raws))
	for _, raw := range raws {
		if err := raw.Validate(); err != nil {
			log.Printf("importer: skipping record %q: %v", raw.Name, err)
			result.Skipped++
			continue
		}
		raw.Type = raw.Type.Normalize()
		valid = append(valid, raw)
	}

	for offset := 0; offset < len(valid); offset += im.batchSize {
		end := offset + im.batchSize
		if end > len(valid) {
			end = len(valid)
		}
		batch := valid[offset:end]

		if err := im.limiter.Wait(ctx); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("importer: cancelled: %w", err)
		}

		result.Batches++
		if err := im.inserter.Insert(ctx, batch); err != nil {
			log.Printf("importer: batch %d failed: %v", result.Batches, err)
			result.FailedBatches++
			result.Failed += len(batch)
			continue
		}
		result.Imported += len(batch)
	}

	result.Duration = time.Since(start)
	return result, nil
}
