package catalog

import (
	"encoding/json"
	"fmt"
)

// IDKind classifies a catalog identifier. The kind is carried explicitly on
// ModID; the legacy numeric sub-range encoding only survives at the
// serialization boundary.
type IDKind int

const (
	KindRegular IDKind = iota
	KindBuiltin
	KindLocal
	KindGroup
)

func (k IDKind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindLocal:
		return "local"
	case KindGroup:
		return "group"
	default:
		return "regular"
	}
}

// Reserved numeric ranges. Workshop IDs are always far above regularIDMin,
// so the pseudo-entry ranges never collide with real published mods.
const (
	builtinIDMin int64 = 1
	builtinIDMax int64 = 9_999
	localIDMin   int64 = 10_000
	localIDMax   int64 = 99_999
	groupIDMin   int64 = 100_000
	groupIDMax   int64 = 999_999
	regularIDMin int64 = 1_000_000
)

// ModID is a tagged catalog identifier.
type ModID struct {
	Kind  IDKind
	Value int64
}

// ClassifyID maps a raw numeric identifier onto its kind. The second return
// is false for non-positive values.
func ClassifyID(n int64) (IDKind, bool) {
	switch {
	case n >= regularIDMin:
		return KindRegular, true
	case n >= groupIDMin && n <= groupIDMax:
		return KindGroup, true
	case n >= localIDMin && n <= localIDMax:
		return KindLocal, true
	case n >= builtinIDMin && n <= builtinIDMax:
		return KindBuiltin, true
	default:
		return KindRegular, false
	}
}

// NewModID converts a legacy numeric identifier into a tagged one.
func NewModID(n int64) (ModID, bool) {
	kind, ok := ClassifyID(n)
	if !ok {
		return ModID{}, false
	}
	return ModID{Kind: kind, Value: n}, true
}

// ValidID reports whether n names an entity the crawler may reference:
// regular workshop IDs always, builtin IDs only when allowBuiltin is set.
// Local and group IDs are never crawler-visible.
func ValidID(n int64, allowBuiltin bool) bool {
	kind, ok := ClassifyID(n)
	if !ok {
		return false
	}
	switch kind {
	case KindRegular:
		return true
	case KindBuiltin:
		return allowBuiltin
	default:
		return false
	}
}

// Numeric returns the legacy numeric form.
func (id ModID) Numeric() int64 { return id.Value }

func (id ModID) IsZero() bool { return id.Value == 0 }

func (id ModID) String() string {
	return fmt.Sprintf("%d", id.Value)
}

// MarshalJSON writes the legacy numeric form.
func (id ModID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Value)
}

// UnmarshalJSON reads the legacy numeric form and re-derives the kind.
func (id *ModID) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	parsed, ok := NewModID(n)
	if !ok {
		return fmt.Errorf("invalid mod id %d", n)
	}
	*id = parsed
	return nil
}
