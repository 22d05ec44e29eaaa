package schema

import (
	"fmt"
	"strings"

	"github.com/hupe1980/lookout/imagemetric"
)

// Mandatory field names, in schema order.
const (
	ImageName  = "image_name"
	PredClass  = "pred_class"
	Confidence = "confidence"
	BBoxX1     = "bbox_x1"
	BBoxY1     = "bbox_y1"
	BBoxX2     = "bbox_x2"
	BBoxY2     = "bbox_y2"
)

var mandatoryNames = []string{ImageName, PredClass, Confidence, BBoxX1, BBoxY1, BBoxX2, BBoxY2}

var mandatory = func() []Field {
	fields := make([]Field, len(mandatoryNames))
	for i, name := range mandatoryNames {
		fields[i] = Field{Name: name, Type: mandatoryType(name)}
	}
	return fields
}()

func init() {
	if err := checkDisjoint(mandatoryNames, imagemetric.Default().IDs()); err != nil {
		panic(err)
	}
}

// mandatoryType types identifier-like fields as strings and everything else as
// 32-bit floats.
func mandatoryType(name string) FieldType {
	if strings.Contains(name, "name") || strings.Contains(name, "class") {
		return FieldTypeString
	}
	return FieldTypeFloat32
}

func checkDisjoint(names []string, metrics []imagemetric.ID) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		seen[n] = struct{}{}
	}
	for _, id := range metrics {
		if _, ok := seen[string(id)]; ok {
			return fmt.Errorf("schema: metric %q collides with a mandatory field", id)
		}
	}
	return nil
}

// Mandatory returns the mandatory fields in schema order.
func Mandatory() []Field { return append([]Field(nil), mandatory...) }

// MandatoryNames returns the mandatory field names in schema order.
func MandatoryNames() []string { return append([]string(nil), mandatoryNames...) }

// IsMandatory reports whether name is a mandatory field.
func IsMandatory(name string) bool {
	for _, n := range mandatoryNames {
		if n == name {
			return true
		}
	}
	return false
}

// MetricField returns the column definition for a metric.
func MetricField(id imagemetric.ID) Field {
	return Field{Name: string(id), Type: FieldTypeFloat32}
}
