// Package lookup turns typed lot identifiers into registry features.
package lookup

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/woozymasta/lotexport/internal/geo"
	"github.com/woozymasta/lotexport/internal/parcel"
	"github.com/woozymasta/lotexport/internal/registry"

	"github.com/rs/zerolog/log"
)

// ErrNoInputs is returned when nothing was given to resolve.
var ErrNoInputs = errors.New("no inputs provided")

// Result holds resolved features with a parallel region per feature.
type Result struct {
	Features []geo.Feature   `json:"features"`
	Regions  []parcel.Region `json:"regions"`
	Skipped  []string        `json:"skipped"`
}

// Resolver fans identifier lookups out over a bounded worker pool.
type Resolver struct {
	Source      registry.Source
	Concurrency int
}

// NewResolver creates a resolver over source.
func NewResolver(source registry.Source, concurrency int) *Resolver {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Resolver{Source: source, Concurrency: concurrency}
}

type job struct {
	Index int
	ID    parcel.Identifier
}

type result struct {
	Index    int
	Features []geo.Feature
	Err      error
}

// Resolve parses inputs, queries the source and concatenates features in input order.
// Blank lines are ignored and unrecognised inputs are reported in Result.Skipped.
func (r *Resolver) Resolve(ctx context.Context, inputs []string) (Result, error) {
	res := Result{
		Features: []geo.Feature{},
		Regions:  []parcel.Region{},
		Skipped:  []string{},
	}

	var ids []parcel.Identifier
	for _, raw := range inputs {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		id, ok := parcel.ParseIdentifier(raw)
		if !ok {
			log.Warn().Str("input", raw).Msg("Unrecognised lot identifier, skipping")
			res.Skipped = append(res.Skipped, raw)
			continue
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 && len(res.Skipped) == 0 {
		return res, ErrNoInputs
	}

	start := time.Now()
	found, err := r.batch(ctx, ids)
	if err != nil {
		return Result{}, err
	}

	for i, features := range found {
		if len(features) == 0 {
			log.Info().Str("identifier", ids[i].String()).Msg("No parcel found")
			continue
		}
		for _, f := range features {
			res.Features = append(res.Features, f)
			res.Regions = append(res.Regions, ids[i].Region)
		}
	}

	log.Info().
		Int("inputs", len(inputs)).
		Int("features", len(res.Features)).
		Int("skipped", len(res.Skipped)).
		Dur("duration", time.Since(start)).
		Msg("Lookup finished")

	return res, nil
}

// batch runs lookups concurrently and returns features indexed like ids.
func (r *Resolver) batch(ctx context.Context, ids []parcel.Identifier) ([][]geo.Feature, error) {
	out := make([][]geo.Feature, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := min(r.Concurrency, len(ids))
	jobs := make(chan job, len(ids))
	results := make(chan result, len(ids))

	go func() {
		for i, id := range ids {
			jobs <- job{Index: i, ID: id}
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					results <- result{Index: j.Index, Err: ctx.Err()}
					continue
				}
				features, err := r.Source.Lookup(ctx, j.ID)
				if err != nil {
					log.Error().Err(err).Str("identifier", j.ID.String()).Msg("Lookup failed")
					cancel()
				}
				results <- result{Index: j.Index, Features: features, Err: err}
			}
		}()
	}
	wg.Wait()
	close(results)

	errs := make([]error, len(ids))
	for res := range results {
		errs[res.Index] = res.Err
		out[res.Index] = res.Features
	}

	if err := firstError(errs); err != nil {
		return nil, err
	}

	return out, nil
}

// firstError picks the earliest lookup failure, ranking cancellations last.
func firstError(errs []error) error {
	var canceled error
	for _, err := range errs {
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			if canceled == nil {
				canceled = err
			}
		default:
			return err
		}
	}
	return canceled
}

// Collection is a GeoJSON FeatureCollection carrying the region of every
// feature, as written by the fetch command and read back by convert.
type Collection struct {
	geo.FeatureCollection
	Regions []parcel.Region `json:"regions,omitempty"`
	Skipped []string        `json:"skipped,omitempty"`
}

// Collection wraps the result for file output.
func (r Result) Collection() Collection {
	return Collection{
		FeatureCollection: geo.NewFeatureCollection(r.Features),
		Regions:           r.Regions,
		Skipped:           r.Skipped,
	}
}
