package catalog

import (
	"sort"
	"strings"
	"time"
)

// Field names a curatable mod attribute. Exclusions are keyed by Field.
type Field string

const (
	FieldName         Field = "name"
	FieldAuthor       Field = "author"
	FieldPublished    Field = "published"
	FieldUpdated      Field = "updated"
	FieldGameVersion  Field = "game_version"
	FieldSourceURL    Field = "source_url"
	FieldStability    Field = "stability"
	FieldNotes        Field = "notes"
	FieldRequiredDLC  Field = "required_dlc"
	FieldRequiredMods Field = "required_mods"
	FieldSuccessor    Field = "successor"
	FieldAlternatives Field = "alternatives"
	FieldStatuses     Field = "statuses"
)

// Status is a mod-level boolean flag independent of stability.
type Status string

const (
	StatusRemoved       Status = "removed"   // gone from the workshop entirely
	StatusUnlisted      Status = "unlisted"  // detail page exists, listing does not show it
	StatusNoDescription Status = "no_description"
	StatusAbandoned     Status = "abandoned"
	StatusSuperseded    Status = "superseded"
)

// Stability classifies a mod against the current game version, ordered from
// fatal incompatibility through confirmed-stable to not-yet-reviewed.
type Stability int

const (
	StabilityIncompatible Stability = iota
	StabilityMajorIssues
	StabilityMinorIssues
	StabilityStable
	StabilityNotReviewed
)

func (s Stability) String() string {
	switch s {
	case StabilityIncompatible:
		return "incompatible"
	case StabilityMajorIssues:
		return "major issues"
	case StabilityMinorIssues:
		return "minor issues"
	case StabilityStable:
		return "stable"
	default:
		return "not reviewed"
	}
}

// Mod is one add-on entity tracked in the catalog. Mods are never deleted,
// only status-flagged, and are mutated exclusively through the Updater.
type Mod struct {
	ID           ModID     `json:"id"`
	Name         string    `json:"name"`
	AuthorID     int64     `json:"author_id,omitempty"`
	AuthorURL    string    `json:"author_url,omitempty"`
	Published    time.Time `json:"published,omitzero"`
	Updated      time.Time `json:"updated,omitzero"`
	GameVersion  string    `json:"game_version,omitempty"`
	SourceURL    string    `json:"source_url,omitempty"`
	RequiredDLC  []string  `json:"required_dlc,omitempty"`
	RequiredMods []int64   `json:"required_mods,omitempty"` // mod or group IDs
	Statuses     []Status  `json:"statuses,omitempty"`
	Stability    Stability `json:"stability"`
	Notes        string    `json:"notes,omitempty"`
	SuccessorID  int64     `json:"successor_id,omitempty"`
	Alternatives []int64   `json:"alternatives,omitempty"`

	// Excluded lists the fields a curator has pinned; the crawler must
	// never overwrite them.
	Excluded []Field `json:"excluded,omitempty"`
}

// HasStatus reports whether the status flag is currently set.
func (m *Mod) HasStatus(s Status) bool {
	for _, have := range m.Statuses {
		if have == s {
			return true
		}
	}
	return false
}

// IsExcluded reports whether a curator pinned the field.
func (m *Mod) IsExcluded(f Field) bool {
	for _, have := range m.Excluded {
		if have == f {
			return true
		}
	}
	return false
}

// Exclude pins a field against automated updates. Curator-side operation.
func (m *Mod) Exclude(f Field) {
	if m.IsExcluded(f) {
		return
	}
	m.Excluded = append(m.Excluded, f)
	sort.Slice(m.Excluded, func(i, j int) bool { return m.Excluded[i] < m.Excluded[j] })
}

// RequiresDLC reports whether the DLC identifier is already recorded.
func (m *Mod) RequiresDLC(dlc string) bool {
	for _, have := range m.RequiredDLC {
		if have == dlc {
			return true
		}
	}
	return false
}

// RequiresMod reports whether the mod/group ID is already recorded.
func (m *Mod) RequiresMod(id int64) bool {
	for _, have := range m.RequiredMods {
		if have == id {
			return true
		}
	}
	return false
}

// Author is a workshop author, created lazily when first referenced by a mod.
// Exactly one of SteamID and CustomURL is the primary key at any time.
type Author struct {
	SteamID   int64     `json:"steam_id,omitempty"`
	CustomURL string    `json:"custom_url,omitempty"`
	Name      string    `json:"name,omitempty"`
	LastSeen  time.Time `json:"last_seen,omitzero"` // most recent mod update attributed to them
	Retired   bool      `json:"retired,omitempty"`
}

// Group is a named set of mutually interchangeable mod IDs. A required-mod
// reference resolving to a group is satisfied by any one member.
type Group struct {
	ID      ModID   `json:"id"`
	Name    string  `json:"name"`
	Members []int64 `json:"members"`
}

// CompatibilityStatus describes the curated relation between two mods.
// Directional statuses are read relative to the first ID of the pair.
type CompatibilityStatus string

const (
	CompatNewerVersion       CompatibilityStatus = "newer_version_available"
	CompatSuperseded         CompatibilityStatus = "functionality_superseded"
	CompatSameFunctionality  CompatibilityStatus = "same_functionality"
	CompatRequiresSettings   CompatibilityStatus = "requires_specific_settings"
	CompatIncompatibleAuthor CompatibilityStatus = "incompatible_per_author"
	CompatIncompatibleUsers  CompatibilityStatus = "incompatible_per_users"
	CompatMinorIssues        CompatibilityStatus = "minor_issues"
)

// Compatibility is a curated pairwise relation between two mods.
type Compatibility struct {
	FirstID  int64               `json:"first_id"`
	SecondID int64               `json:"second_id"`
	Status   CompatibilityStatus `json:"status"`
	Note     string              `json:"note,omitempty"`
}

// pairKey normalizes the unordered pair for indexing.
func pairKey(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}

// normalizeURL lowercases a custom-URL slug for key comparisons.
func normalizeURL(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}
