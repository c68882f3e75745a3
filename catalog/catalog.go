package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Catalog is the aggregate of all known mods, authors, groups and pairwise
// compatibilities, plus the snapshot version number. Lookup indices are kept
// consistent with every mutation; they are rebuilt after deserialization.
type Catalog struct {
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
	GameVersion string    `json:"game_version"`
	Header      string    `json:"header,omitempty"`
	Footer      string    `json:"footer,omitempty"`
	Note        string    `json:"note,omitempty"`

	Mods            []*Mod           `json:"mods"`
	Authors         []*Author        `json:"authors,omitempty"`
	Groups          []*Group         `json:"groups,omitempty"`
	Compatibilities []*Compatibility `json:"compatibilities,omitempty"`

	modsByID     map[int64]*Mod
	modsByName   map[string][]*Mod
	authorsByID  map[int64]*Author
	authorsByURL map[string]*Author
	groupsByID   map[int64]*Group
	compatsByKey map[[2]int64][]*Compatibility
}

// New creates an empty catalog for the given target game version.
func New(gameVersion string) *Catalog {
	c := &Catalog{
		Version:     0,
		CreatedAt:   time.Now(),
		GameVersion: gameVersion,
	}
	c.resetIndexes()
	return c
}

func (c *Catalog) resetIndexes() {
	c.modsByID = make(map[int64]*Mod)
	c.modsByName = make(map[string][]*Mod)
	c.authorsByID = make(map[int64]*Author)
	c.authorsByURL = make(map[string]*Author)
	c.groupsByID = make(map[int64]*Group)
	c.compatsByKey = make(map[[2]int64][]*Compatibility)
}

// RebuildIndexes reconstructs all lookup indices from the entity slices.
func (c *Catalog) RebuildIndexes() {
	c.resetIndexes()
	for _, m := range c.Mods {
		c.indexMod(m)
	}
	for _, a := range c.Authors {
		c.indexAuthor(a)
	}
	for _, g := range c.Groups {
		c.groupsByID[g.ID.Numeric()] = g
	}
	for _, comp := range c.Compatibilities {
		key := pairKey(comp.FirstID, comp.SecondID)
		c.compatsByKey[key] = append(c.compatsByKey[key], comp)
	}
}

func (c *Catalog) indexMod(m *Mod) {
	c.modsByID[m.ID.Numeric()] = m
	name := strings.ToLower(m.Name)
	c.modsByName[name] = append(c.modsByName[name], m)
}

func (c *Catalog) indexAuthor(a *Author) {
	if a.SteamID != 0 {
		c.authorsByID[a.SteamID] = a
	}
	if a.CustomURL != "" {
		c.authorsByURL[normalizeURL(a.CustomURL)] = a
	}
}

// GetMod looks a mod up by its numeric ID, nil when absent.
func (c *Catalog) GetMod(id int64) *Mod {
	return c.modsByID[id]
}

// GetModsByName returns all mods sharing a display name (case-insensitive).
func (c *Catalog) GetModsByName(name string) []*Mod {
	return c.modsByName[strings.ToLower(name)]
}

// GetAuthor resolves an author by Steam ID first, then by custom URL.
// Returns nil when neither key matches.
func (c *Catalog) GetAuthor(steamID int64, customURL string) *Author {
	if steamID != 0 {
		if a := c.authorsByID[steamID]; a != nil {
			return a
		}
	}
	if customURL != "" {
		return c.authorsByURL[normalizeURL(customURL)]
	}
	return nil
}

// GetGroup looks a group up by its numeric ID, nil when absent.
func (c *Catalog) GetGroup(id int64) *Group {
	return c.groupsByID[id]
}

// AddMod registers a constructed mod, rejecting duplicate IDs.
func (c *Catalog) AddMod(m *Mod) error {
	if m.ID.IsZero() {
		return fmt.Errorf("mod %q has no id", m.Name)
	}
	if existing := c.modsByID[m.ID.Numeric()]; existing != nil {
		return fmt.Errorf("duplicate mod id %d (%q)", m.ID.Numeric(), existing.Name)
	}
	c.Mods = append(c.Mods, m)
	c.indexMod(m)
	return nil
}

// AddAuthor registers a constructed author, rejecting duplicate keys.
func (c *Catalog) AddAuthor(a *Author) error {
	if a.SteamID == 0 && a.CustomURL == "" {
		return fmt.Errorf("author %q has neither steam id nor custom url", a.Name)
	}
	if existing := c.GetAuthor(a.SteamID, a.CustomURL); existing != nil {
		return fmt.Errorf("duplicate author %q", existing.Name)
	}
	c.Authors = append(c.Authors, a)
	c.indexAuthor(a)
	return nil
}

// AddGroup registers a group, rejecting non-group IDs and duplicates.
func (c *Catalog) AddGroup(g *Group) error {
	if g.ID.Kind != KindGroup {
		return fmt.Errorf("group %q has non-group id %d", g.Name, g.ID.Numeric())
	}
	if c.groupsByID[g.ID.Numeric()] != nil {
		return fmt.Errorf("duplicate group id %d", g.ID.Numeric())
	}
	c.Groups = append(c.Groups, g)
	c.groupsByID[g.ID.Numeric()] = g
	return nil
}

// AddCompatibility registers a curated pairwise relation.
func (c *Catalog) AddCompatibility(comp *Compatibility) error {
	if comp.FirstID == comp.SecondID {
		return fmt.Errorf("compatibility pairs a mod %d with itself", comp.FirstID)
	}
	c.Compatibilities = append(c.Compatibilities, comp)
	key := pairKey(comp.FirstID, comp.SecondID)
	c.compatsByKey[key] = append(c.compatsByKey[key], comp)
	return nil
}

// CompatibilitiesFor returns all relations recorded for the unordered pair.
func (c *Catalog) CompatibilitiesFor(a, b int64) []*Compatibility {
	return c.compatsByKey[pairKey(a, b)]
}

// ResolveRequirement reports the group members (or the single mod) that keep
// a requirement from being satisfied. A requirement is satisfied as soon as
// any interchangeable member is both subscribed and enabled, in which case
// nothing is reported. Otherwise the subscribed-but-disabled members are
// returned so a report can name them.
func (c *Catalog) ResolveRequirement(required int64, subscribed, enabled map[int64]bool) []int64 {
	members := []int64{required}
	if g := c.GetGroup(required); g != nil {
		members = g.Members
	}
	var disabled []int64
	for _, id := range members {
		if !subscribed[id] {
			continue
		}
		if enabled[id] {
			return nil
		}
		disabled = append(disabled, id)
	}
	return disabled
}

// UnmarshalJSON decodes the snapshot form and rebuilds all indices.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	type plain Catalog
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Catalog(p)
	c.RebuildIndexes()
	return nil
}
