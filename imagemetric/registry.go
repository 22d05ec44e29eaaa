package imagemetric

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Func computes one metric. The frame is never nil; the bbox may be.
type Func func(f *Frame, b *BBox) (float64, error)

// Metric binds an identifier to its input requirements and formula.
type Metric struct {
	ID       ID
	Requires Requirement
	Func     Func
}

// Result maps each requested metric to its value, or nil when it could not be
// computed.
type Result map[ID]*float64

// Failure records why a requested metric resolved to nil.
type Failure struct {
	ID  ID
	Err error
}

func (f Failure) Error() string { return fmt.Sprintf("metric %s: %v", f.ID, f.Err) }

func (f Failure) Unwrap() error { return f.Err }

// Registry is a dispatch table of metrics. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	metrics map[ID]Metric
	order   []ID
}

// NewRegistry returns a registry holding the given metrics.
func NewRegistry(metrics ...Metric) (*Registry, error) {
	r := &Registry{metrics: make(map[ID]Metric, len(metrics))}
	for _, m := range metrics {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

var defaultRegistry = mustRegistry(Builtins()...)

func mustRegistry(metrics ...Metric) *Registry {
	r, err := NewRegistry(metrics...)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the registry holding the built-in metrics.
func Default() *Registry { return defaultRegistry }

// Register adds m to the registry.
func (r *Registry) Register(m Metric) error {
	if m.ID == "" || m.Func == nil {
		return fmt.Errorf("imagemetric: metric needs an id and a func")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.metrics[m.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateMetric, m.ID)
	}
	r.metrics[m.ID] = m
	r.order = append(r.order, m.ID)
	return nil
}

// Lookup returns the metric registered under id.
func (r *Registry) Lookup(id ID) (Metric, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.metrics[id]
	return m, ok
}

// IDs returns the registered identifiers in registration order.
func (r *Registry) IDs() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ID(nil), r.order...)
}

// Compute evaluates the requested metrics using the default registry.
func Compute(in *Input, b *BBox, requested []ID) Result {
	return defaultRegistry.Compute(in, b, requested)
}

// Compute evaluates the requested metrics. Every requested id is present in the
// result; ids that could not be computed map to nil.
func (r *Registry) Compute(in *Input, b *BBox, requested []ID) Result {
	res, _ := r.Evaluate(in, b, requested)
	return res
}

// Evaluate is Compute that also reports why each nil entry is nil.
//
// With a nil input or no requested ids it returns without decoding anything
// and without failures. The input is decoded at most once per call.
func (r *Registry) Evaluate(in *Input, b *BBox, requested []ID) (Result, []Failure) {
	res := make(Result, len(requested))
	for _, id := range requested {
		res[id] = nil
	}
	if in == nil || len(requested) == 0 {
		return res, nil
	}

	frame, err := in.Frame()
	if err != nil {
		failures := make([]Failure, 0, len(res))
		for id := range res {
			failures = append(failures, Failure{ID: id, Err: err})
		}
		sort.Slice(failures, func(i, j int) bool { return failures[i].ID < failures[j].ID })
		return res, failures
	}

	var failures []Failure
	done := make(map[ID]bool, len(res))
	for _, id := range requested {
		if done[id] {
			continue
		}
		done[id] = true
		v, err := r.computeOne(id, frame, b)
		if err != nil {
			failures = append(failures, Failure{ID: id, Err: err})
			continue
		}
		res[id] = &v
	}
	return res, failures
}

func (r *Registry) computeOne(id ID, frame *Frame, b *BBox) (v float64, err error) {
	m, ok := r.Lookup(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, id)
	}
	if m.Requires.Has(RequiresBBox) && !b.Valid() {
		return 0, ErrInvalidBBox
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("imagemetric: %s panicked: %v", id, p)
		}
	}()

	v, err = m.Func(frame, b)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNonFinite
	}
	return v, nil
}
