package frame

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDataIntegrity marks a frame whose element records are missing required
// fields. Role identity is never guessed, so such a frame aborts the run.
var ErrDataIntegrity = errors.New("frame data integrity error")

// ElementType distinguishes core roles from peripheral ones.
type ElementType string

const (
	Core    ElementType = "core"
	NonCore ElementType = "non_core"
)

// ElementDescriptor is a role flattened out of a Definition.
type ElementDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Type        ElementType `json:"type"`
}

// ExtractElements flattens the core and non-core role lists of def into a
// single sequence: every core element first, then every non-core element,
// each group in source order. Missing groups contribute nothing.
func ExtractElements(def *Definition) ([]ElementDescriptor, error) {
	if def == nil {
		return nil, nil
	}

	out := make([]ElementDescriptor, 0, len(def.Elements.Core)+len(def.Elements.NonCore))
	groups := []struct {
		typ      ElementType
		elements []Element
	}{
		{Core, def.Elements.Core},
		{NonCore, def.Elements.NonCore},
	}

	for _, g := range groups {
		for i, el := range g.elements {
			if len(el.missing) > 0 {
				return nil, fmt.Errorf("%w: %s element #%d (%q) missing %s",
					ErrDataIntegrity, g.typ, i, el.Name, strings.Join(el.missing, ", "))
			}
			out = append(out, ElementDescriptor{
				Name:        el.Name,
				Description: el.Description,
				Type:        g.typ,
			})
		}
	}

	return out, nil
}

// Names returns the role names of descs in order.
func Names(descs []ElementDescriptor) []string {
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name
	}
	return names
}
