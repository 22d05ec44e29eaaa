package imagemetric

import (
	"fmt"
	"strings"
)

// ID is a logical metric identifier. It doubles as the column name.
type ID string

// Built-in metric identifiers.
const (
	Contrast    ID = "contrast"
	Blur        ID = "blur"
	Orientation ID = "orientation"
	BBoxRatio   ID = "bbox_ratio"
)

// String returns the identifier as a column name.
func (id ID) String() string { return string(id) }

// Requirement is a bit set describing the inputs a metric needs.
type Requirement uint8

const (
	// RequiresImage marks metrics computed from pixel data.
	RequiresImage Requirement = 1 << iota
	// RequiresBBox marks metrics that need a valid bounding box.
	RequiresBBox
)

// Has reports whether r includes all bits of other.
func (r Requirement) Has(other Requirement) bool { return r&other == other }

func (r Requirement) String() string {
	var parts []string
	if r.Has(RequiresImage) {
		parts = append(parts, "image")
	}
	if r.Has(RequiresBBox) {
		parts = append(parts, "bbox")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// ParseID resolves s against the default registry. Matching is case-insensitive
// and ignores surrounding whitespace.
func ParseID(s string) (ID, error) {
	return defaultRegistry.ParseID(s)
}

// ParseIDs resolves every element of ss, stopping at the first unknown id.
func ParseIDs(ss []string) ([]ID, error) {
	return defaultRegistry.ParseIDs(ss)
}

// ParseID resolves s against the metrics registered in r.
func (r *Registry) ParseID(s string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := r.Lookup(id); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
	return id, nil
}

// ParseIDs resolves every element of ss against r.
func (r *Registry) ParseIDs(ss []string) ([]ID, error) {
	ids := make([]ID, 0, len(ss))
	for _, s := range ss {
		if strings.TrimSpace(s) == "" {
			continue
		}
		id, err := r.ParseID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
