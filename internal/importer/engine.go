// Package importer implements the generic tabular import pipeline: one engine
// parameterized per record type via a Binding. Rows flow through format
// detection, header normalization and field coercion, then reconcile against
// the record store with atomic upserts. Row-level failures never abort the
// batch; only format-level failures abort the request.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vnfin/refdata/internal/models"
	"github.com/vnfin/refdata/internal/tabular"
)

// ErrParentNotFound is returned by bindings whose records reference a parent
// entity that must pre-exist.
var ErrParentNotFound = errors.New("referenced parent record not found")

// maxReportedErrors caps the error list in the response; Failed still carries
// the true count.
const maxReportedErrors = 10

// Record is one parsed, key-validated row ready for reconciliation.
type Record interface {
	// Key is the record's natural key rendered as a string, used to order
	// writes and to identify the row in error reports.
	Key() string
}

// Binding adapts the engine to one concrete record type.
type Binding interface {
	// Schema is the record type's explicit column alias table.
	Schema() *tabular.Schema
	// Decode coerces a mapped row into a record. Natural-key validation
	// happens here; a failed decode rejects the row before any storage call.
	Decode(row tabular.Row) (Record, error)
	// Upsert reconciles one record against the store atomically
	// (insert-or-update-on-conflict). Reports whether the row was created.
	Upsert(ctx context.Context, rec Record) (created bool, err error)
}

// BatchBinding is an optional extension for bindings whose store can upsert a
// whole batch in one round trip. Results must align with the input slice, and
// a failed record must not affect the others.
type BatchBinding interface {
	Binding
	UpsertBatch(ctx context.Context, recs []Record) (created []bool, errs []error)
}

// Engine runs imports in fixed-size batches with bounded parallelism inside
// each batch. Rows sharing a natural key are serialized in file order so the
// last row for a key wins.
type Engine struct {
	BatchSize   int
	Parallelism int
}

// NewEngine returns an engine with the given batch size and a parallelism
// bound of 8 upserts in flight per batch.
func NewEngine(batchSize int) *Engine {
	if batchSize < 1 {
		batchSize = 100
	}
	return &Engine{BatchSize: batchSize, Parallelism: 8}
}

type decodedRow struct {
	line int
	rec  Record
}

// Run executes one import request end to end. Format-level failures
// (unsupported format, empty file, no usable rows) return an error; every
// other failure is per-row and lands in the result's error list.
func (e *Engine) Run(ctx context.Context, data []byte, filename, mimetype string, b Binding) (*models.ImportResult, error) {
	table, err := tabular.ReadTable(data, filename, mimetype)
	if err != nil {
		return nil, err
	}

	rows, hm, err := b.Schema().MapRows(table)
	if err != nil {
		return nil, err
	}

	batchID := uuid.New()
	result := &models.ImportResult{
		BatchID: batchID.String(),
		Total:   len(rows),
		Errors:  []models.RowError{},
	}
	if hm != nil {
		result.IgnoredColumns = hm.Ignored
	}

	var mu sync.Mutex
	var allErrors []models.RowError

	recordFailure := func(line int, key, msg string) {
		mu.Lock()
		defer mu.Unlock()
		result.Failed++
		allErrors = append(allErrors, models.RowError{Line: line, Key: key, Message: msg})
	}

	// Decode pass: reject rows with unusable natural keys before touching
	// storage.
	var decoded []decodedRow
	for _, row := range rows {
		rec, err := b.Decode(row)
		if err != nil {
			recordFailure(row.Line, "", err.Error())
			continue
		}
		decoded = append(decoded, decodedRow{line: row.Line, rec: rec})
	}

	// Reconciliation pass, batched.
	for start := 0; start < len(decoded); start += e.BatchSize {
		end := start + e.BatchSize
		if end > len(decoded) {
			end = len(decoded)
		}
		e.runBatch(ctx, decoded[start:end], b, result, &mu, recordFailure)
	}

	sort.Slice(allErrors, func(i, j int) bool { return allErrors[i].Line < allErrors[j].Line })
	if len(allErrors) > maxReportedErrors {
		allErrors = allErrors[:maxReportedErrors]
	}
	result.Errors = allErrors

	log.WithFields(log.Fields{
		"batch_id": result.BatchID,
		"file":     filename,
		"total":    result.Total,
		"created":  result.Created,
		"updated":  result.Updated,
		"failed":   result.Failed,
	}).Info("import finished")

	return result, nil
}

// runBatch upserts one batch. When the binding supports batched upserts the
// whole batch goes to the store in one round trip (statements execute in file
// order, so the last row for a key wins). Otherwise distinct natural keys run
// concurrently and rows sharing a key run sequentially in file order.
func (e *Engine) runBatch(
	ctx context.Context,
	batch []decodedRow,
	b Binding,
	result *models.ImportResult,
	mu *sync.Mutex,
	recordFailure func(line int, key, msg string),
) {
	if bb, ok := b.(BatchBinding); ok {
		recs := make([]Record, len(batch))
		for i, d := range batch {
			recs[i] = d.rec
		}
		created, errs := bb.UpsertBatch(ctx, recs)
		for i := range batch {
			if i < len(errs) && errs[i] != nil {
				recordFailure(batch[i].line, batch[i].rec.Key(), errs[i].Error())
				continue
			}
			mu.Lock()
			if i < len(created) && created[i] {
				result.Created++
			} else {
				result.Updated++
			}
			mu.Unlock()
		}
		return
	}

	groups := make(map[string][]decodedRow)
	var order []string
	for _, d := range batch {
		k := d.rec.Key()
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], d)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Parallelism)
	for _, key := range order {
		group := groups[key]
		g.Go(func() error {
			for _, d := range group {
				created, err := b.Upsert(gctx, d.rec)
				if err != nil {
					recordFailure(d.line, d.rec.Key(), err.Error())
					continue
				}
				mu.Lock()
				if created {
					result.Created++
				} else {
					result.Updated++
				}
				mu.Unlock()
			}
			return nil
		})
	}
	// Workers never return an error; row failures are recorded instead.
	if err := g.Wait(); err != nil {
		recordFailure(0, "", fmt.Sprintf("batch aborted: %v", err))
	}
}
