package surface

import "fmt"

// Shape selects the normalization strategy for a category's raw document.
type Shape string

const (
	// ShapeEntities is a ranked list of classes, functions and constants.
	ShapeEntities Shape = "entities"
	// ShapeEnums is a list of enums with members.
	ShapeEnums Shape = "enums"
	// ShapeTypes is a list of declared types.
	ShapeTypes Shape = "types"
	// ShapeModifiers maps bucket names to lists of modifier names.
	ShapeModifiers Shape = "modifiers"
	// ShapeEvents is an object whose keys are event names.
	ShapeEvents Shape = "events"
	// ShapeConvars is an object whose keys are console variable names.
	ShapeConvars Shape = "convars"
)

// Shapes returns every supported shape in a stable order.
func Shapes() []Shape {
	return []Shape{ShapeEntities, ShapeEnums, ShapeTypes, ShapeModifiers, ShapeEvents, ShapeConvars}
}

// ParseShape converts a configuration string into a Shape.
func ParseShape(s string) (Shape, error) {
	for _, shape := range Shapes() {
		if string(shape) == s {
			return shape, nil
		}
	}
	return "", fmt.Errorf("unknown category shape %q (valid: %v)", s, Shapes())
}

// Category is one tracked facet of the API surface.
type Category struct {
	// Key is the stable identifier used in snapshots and change sets.
	Key string `koanf:"key" json:"key" yaml:"key" validate:"required"`
	// Name is the human-readable display name.
	Name string `koanf:"name" json:"name" yaml:"name" validate:"required"`
	// File is the source document path, relative to the files directory.
	File string `koanf:"file" json:"file" yaml:"file" validate:"required"`
	// Shape selects how File is normalized.
	Shape Shape `koanf:"shape" json:"shape" yaml:"shape" validate:"required,shape"`
}

// DefaultCategories returns the categories tracked out of the box.
func DefaultCategories() []Category {
	return []Category{
		{Key: "api", Name: "Lua API", File: "vscripts/api.json", Shape: ShapeEntities},
		{Key: "types", Name: "Lua Types", File: "vscripts/api-types.json", Shape: ShapeTypes},
		{Key: "enums", Name: "Lua Enums", File: "vscripts/enums.json", Shape: ShapeEnums},
		{Key: "modifiers", Name: "Modifiers", File: "vscripts/modifier_list.json", Shape: ShapeModifiers},
		{Key: "events", Name: "Game Events", File: "events.json", Shape: ShapeEvents},
		{Key: "panorama_api", Name: "Panorama API", File: "panorama/api.json", Shape: ShapeEntities},
		{Key: "panorama_events", Name: "Panorama Events", File: "panorama/events.json", Shape: ShapeEvents},
		{Key: "panorama_enums", Name: "Panorama Enums", File: "panorama/enums.json", Shape: ShapeEnums},
		{Key: "convars", Name: "Console Variables", File: "convars.json", Shape: ShapeConvars},
		{Key: "engine_enums", Name: "Engine Enums", File: "engine-enums.json", Shape: ShapeEnums},
	}
}
