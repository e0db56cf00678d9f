package surface

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MalformedDocumentError reports a document that is not JSON or does not
// match the shape declared for its category.
type MalformedDocumentError struct {
	Shape Shape
	Err   error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed %s document: %v", e.Shape, e.Err)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// Normalize converts a raw category document into items in declaration order.
//
// On failure it returns an empty, non-nil slice together with a
// *MalformedDocumentError so the caller can record the problem and carry on
// with the remaining categories. Items sharing an identity key are collapsed
// to their first occurrence.
func Normalize(shape Shape, data []byte) ([]Item, error) {
	var (
		items []Item
		err   error
	)

	switch shape {
	case ShapeEntities:
		items, err = normalizeEntities(data)
	case ShapeEnums:
		items, err = normalizeEnums(data)
	case ShapeTypes:
		items, err = normalizeTypes(data)
	case ShapeModifiers:
		items, err = normalizeModifiers(data)
	case ShapeEvents:
		items, err = normalizeKeySet(data, KindEvent)
	case ShapeConvars:
		items, err = normalizeKeySet(data, KindConvar)
	default:
		err = fmt.Errorf("unknown shape %q", shape)
	}

	if err != nil {
		return []Item{}, &MalformedDocumentError{Shape: shape, Err: err}
	}
	return dedupe(items), nil
}

type rawArg struct {
	Name string `json:"name"`
}

type rawEntity struct {
	Kind    string          `json:"kind"`
	Name    string          `json:"name"`
	Args    []rawArg        `json:"args"`
	Members []rawEntity     `json:"members"`
	Value   json.RawMessage `json:"value"`
}

func normalizeEntities(data []byte) ([]Item, error) {
	var entities []rawEntity
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(entities))
	for _, e := range entities {
		if e.Name == "" {
			continue
		}
		switch e.Kind {
		case "class":
			items = append(items, Item{Kind: KindClass, Name: e.Name})
			for _, m := range e.Members {
				if m.Kind != "function" || m.Name == "" {
					continue
				}
				items = append(items, Item{
					Kind:      KindMethod,
					Name:      m.Name,
					Parent:    e.Name,
					Signature: formatSignature(m.Name, m.Args),
				})
			}
		case "function":
			items = append(items, Item{
				Kind:      KindFunction,
				Name:      e.Name,
				Signature: formatSignature(e.Name, e.Args),
			})
		case "constant":
			items = append(items, Item{
				Kind:  KindConstant,
				Name:  e.Name,
				Value: displayValue(e.Value),
			})
		}
	}
	return items, nil
}

type rawEnum struct {
	Name    string `json:"name"`
	Members []struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	} `json:"members"`
}

func normalizeEnums(data []byte) ([]Item, error) {
	var enums []rawEnum
	if err := json.Unmarshal(data, &enums); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(enums))
	for _, e := range enums {
		if e.Name == "" {
			continue
		}
		items = append(items, Item{Kind: KindEnum, Name: e.Name})
		for _, m := range e.Members {
			if m.Name == "" {
				continue
			}
			items = append(items, Item{
				Kind:   KindEnumMember,
				Name:   m.Name,
				Parent: e.Name,
				Value:  displayValue(m.Value),
			})
		}
	}
	return items, nil
}

func normalizeTypes(data []byte) ([]Item, error) {
	var types []struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &types); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(types))
	for _, t := range types {
		if t.Name == "" {
			continue
		}
		items = append(items, Item{Kind: KindType, Name: t.Name, Tag: t.Kind})
	}
	return items, nil
}

func normalizeModifiers(data []byte) ([]Item, error) {
	var items []Item
	err := walkObject(data, func(bucket string, raw json.RawMessage) error {
		var names []string
		if err := json.Unmarshal(raw, &names); err != nil {
			// Buckets that are not lists of names carry no modifiers.
			return nil
		}
		for _, name := range names {
			if name == "" {
				continue
			}
			items = append(items, Item{Kind: KindModifier, Name: name, Parent: bucket})
		}
		return nil
	})
	return items, err
}

func normalizeKeySet(data []byte, kind Kind) ([]Item, error) {
	var items []Item
	err := walkObject(data, func(key string, _ json.RawMessage) error {
		items = append(items, Item{Kind: kind, Name: key})
		return nil
	})
	return items, err
}

// walkObject visits the members of a top-level JSON object in document order.
func walkObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("expected a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decoding value of %q: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// formatSignature renders "name(a, b)" from argument names.
func formatSignature(name string, args []rawArg) string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Name
	}
	return name + "(" + strings.Join(names, ", ") + ")"
}

// displayValue renders a raw JSON scalar for display: strings are unquoted,
// everything else is kept as written.
func displayValue(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}

func dedupe(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		key := item.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
