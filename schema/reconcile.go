package schema

import (
	"fmt"

	"github.com/hupe1980/lookout/imagemetric"
)

// Desired returns the mandatory fields followed by one column per metric in
// the given order. Repeated metrics are ignored after their first occurrence.
//
// Metric ids that collide with a mandatory name cannot be produced by the
// metric registry; Desired panics if one is passed anyway.
func Desired(metrics []imagemetric.ID) Schema {
	fields := Mandatory()
	seen := make(map[imagemetric.ID]struct{}, len(metrics))
	for _, id := range metrics {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		fields = append(fields, MetricField(id))
	}
	return MustNew(fields...)
}

// Reconcile widens existing towards desired.
//
// The result keeps every existing column in its original position and type and
// appends each desired column whose name is missing, in desired order. Columns
// present only in existing are kept. A name present in both with different
// types cannot arise from Desired and causes a panic.
func Reconcile(existing, desired Schema) (final Schema, added []Field) {
	for _, f := range desired.fields {
		cur, ok := existing.Field(f.Name)
		if !ok {
			added = append(added, f)
			continue
		}
		if cur.Type != f.Type {
			panic(fmt.Sprintf("schema: column %q is %s on disk but %s desired", f.Name, cur.Type, f.Type))
		}
	}

	final, err := existing.Append(added...)
	if err != nil {
		panic(err)
	}
	return final, added
}

// Conflicts lists the names present in both schemas with different types.
// Callers that read a schema from untrusted storage check this before
// Reconcile.
func Conflicts(existing, desired Schema) []string {
	var names []string
	for _, f := range desired.fields {
		if cur, ok := existing.Field(f.Name); ok && cur.Type != f.Type {
			names = append(names, f.Name)
		}
	}
	return names
}

// MissingMandatory returns the mandatory fields absent from s.
func MissingMandatory(s Schema) []string {
	var missing []string
	for _, n := range mandatoryNames {
		if !s.Has(n) {
			missing = append(missing, n)
		}
	}
	return missing
}
