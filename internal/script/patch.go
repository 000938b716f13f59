package script

import (
	"errors"
	"fmt"
)

// Paths accepted by PatchFor.
const (
	PathType     = "type"
	PathTitle    = "title"
	PathDuration = "duration"
	PathDetails  = "details"
	PathTags     = "tags"
	PathNotes    = "notes"
)

var (
	// ErrUnknownPath is returned for an update path that names no item field.
	ErrUnknownPath = errors.New("unknown item path")
	// ErrBadValue is returned when a value has the wrong shape for its path.
	ErrBadValue = errors.New("bad value for item path")
)

// PatchFor builds the patch for setting path (and key, for details) to
// value on current. Details patches merge into the current bag.
func PatchFor(current Item, path, key string, value any) (Patch, error) {
	switch path {
	case PathDetails:
		if key == "" {
			return Patch{}, fmt.Errorf("%w: details needs a key", ErrBadValue)
		}
		if IsComputedKey(key) {
			return Patch{}, fmt.Errorf("%w: details.%s is computed by layout", ErrBadValue, key)
		}
		return Patch{Details: Set(current.Details.With(key, value))}, nil

	case PathTitle:
		s, ok := value.(string)
		if !ok {
			return Patch{}, fmt.Errorf("%w: title must be a string, got %T", ErrBadValue, value)
		}
		return Patch{Title: Set(s)}, nil

	case PathType:
		switch v := value.(type) {
		case Type:
			return Patch{Type: Set(v)}, nil
		case string:
			return Patch{Type: Set(Type(v))}, nil
		}
		return Patch{}, fmt.Errorf("%w: type must be a string, got %T", ErrBadValue, value)

	case PathDuration:
		if value == nil {
			return Patch{Duration: Set[*float64](nil)}, nil
		}
		if p, ok := value.(*float64); ok {
			return Patch{Duration: Set(p)}, nil
		}
		f, ok := ToFloat(value)
		if !ok {
			return Patch{}, fmt.Errorf("%w: duration must be a number or null, got %T", ErrBadValue, value)
		}
		if f < 0 {
			return Patch{}, fmt.Errorf("%w: duration must not be negative", ErrBadValue)
		}
		return Patch{Duration: Set(Seconds(f))}, nil

	case PathTags, PathNotes:
		ids, err := toStrings(value)
		if err != nil {
			return Patch{}, fmt.Errorf("%w: %s: %v", ErrBadValue, path, err)
		}
		if path == PathTags {
			return Patch{Tags: Set(ids)}, nil
		}
		return Patch{Notes: Set(ids)}, nil
	}
	return Patch{}, fmt.Errorf("%w: %q", ErrUnknownPath, path)
}

func toStrings(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("element %v is %T, not a string", e, e)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a list of ids, got %T", value)
}
