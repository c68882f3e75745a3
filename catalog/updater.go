package catalog

import (
	"strconv"
	"time"

	"go.uber.org/zap"
)

// ModChanges is an explicit partial update: every field is either unset (nil)
// or set to the value the caller wants stored. The Updater applies three
// independent rules per field: skip when unset, skip when excluded, skip when
// equal to the stored value.
type ModChanges struct {
	Name        *string
	AuthorID    *int64
	AuthorURL   *string
	Published   *time.Time
	Updated     *time.Time
	GameVersion *string
	SourceURL   *string
	Stability   *Stability
	Notes       *string
	Successor   *int64
}

// Updater is the sole mutation surface of a catalog after creation. It
// enforces per-field exclusions, skips no-op writes, and records one
// change-note line per effective mutation. Every operation is safe to call
// redundantly, which is what makes repeated crawling convergent.
type Updater struct {
	cat        *Catalog
	notes      *ChangeNotes
	reviewDate time.Time
	log        *zap.SugaredLogger
}

// NewUpdater opens an update session on the catalog. The logger may be nil.
func NewUpdater(cat *Catalog, log *zap.SugaredLogger) *Updater {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Updater{
		cat:   cat,
		notes: NewChangeNotes(),
		log:   log,
	}
}

// Catalog returns the catalog this session mutates.
func (u *Updater) Catalog() *Catalog { return u.cat }

// Notes returns the session's change-note accumulator.
func (u *Updater) Notes() *ChangeNotes { return u.notes }

// SetReviewDate stamps the session-wide "as of" time used for change notes
// and retirement evaluation.
func (u *Updater) SetReviewDate(t time.Time) {
	u.reviewDate = t
	u.notes.SetReviewDate(t)
}

// ReviewDate returns the session review date; zero when never stamped.
func (u *Updater) ReviewDate() time.Time {
	return u.reviewDate
}

// AddMod returns the existing mod for the ID or creates a new one. Listings
// are re-scanned every session, so an existing mod is never an error. A
// listing marked incompatible forces the stability down; a fresh mod from a
// regular listing starts out not reviewed.
func (u *Updater) AddMod(id int64, name string, incompatibleListing bool) *Mod {
	modID, ok := NewModID(id)
	if !ok {
		u.log.Warnw("Ignoring mod with invalid id", zap.Int64("id", id), zap.String("name", name))
		return nil
	}
	if existing := u.cat.GetMod(id); existing != nil {
		return existing
	}
	m := &Mod{
		ID:        modID,
		Name:      name,
		Stability: StabilityNotReviewed,
	}
	if incompatibleListing {
		m.Stability = StabilityIncompatible
	}
	if err := u.cat.AddMod(m); err != nil {
		u.log.Warnw("Failed to add mod", zap.Int64("id", id), zap.Error(err))
		return nil
	}
	u.notes.Added("mod %s (%d), stability %s", m.Name, id, m.Stability)
	return m
}

// UpdateMod applies a partial update to the mod. byCrawler only affects how
// skipped exclusions are logged; the merge rules are identical for curator
// and crawler callers.
func (u *Updater) UpdateMod(m *Mod, ch ModChanges, byCrawler bool) {
	if ch.Name != nil {
		u.setString(m, FieldName, &m.Name, *ch.Name, byCrawler)
	}
	if ch.AuthorID != nil {
		u.setInt64(m, FieldAuthor, &m.AuthorID, *ch.AuthorID, byCrawler)
	}
	if ch.AuthorURL != nil {
		u.setString(m, FieldAuthor, &m.AuthorURL, *ch.AuthorURL, byCrawler)
	}
	if ch.Published != nil {
		u.setTime(m, FieldPublished, &m.Published, *ch.Published, byCrawler)
	}
	if ch.Updated != nil {
		u.setTime(m, FieldUpdated, &m.Updated, *ch.Updated, byCrawler)
	}
	if ch.GameVersion != nil {
		u.setString(m, FieldGameVersion, &m.GameVersion, *ch.GameVersion, byCrawler)
	}
	if ch.SourceURL != nil {
		u.setString(m, FieldSourceURL, &m.SourceURL, *ch.SourceURL, byCrawler)
	}
	if ch.Stability != nil {
		u.setStability(m, *ch.Stability, byCrawler)
	}
	if ch.Notes != nil {
		u.setString(m, FieldNotes, &m.Notes, *ch.Notes, byCrawler)
	}
	if ch.Successor != nil {
		u.setInt64(m, FieldSuccessor, &m.SuccessorID, *ch.Successor, byCrawler)
	}
}

func (u *Updater) skipExcluded(m *Mod, f Field, byCrawler bool) bool {
	if !m.IsExcluded(f) {
		return false
	}
	if byCrawler {
		u.log.Debugw("Skipping excluded field",
			zap.Int64("mod", m.ID.Numeric()), zap.String("field", string(f)))
	}
	return true
}

func (u *Updater) setString(m *Mod, f Field, cur *string, next string, byCrawler bool) {
	if u.skipExcluded(m, f, byCrawler) || *cur == next {
		return
	}
	u.notes.Changed("mod %s (%d): %s changed from %q to %q", m.Name, m.ID.Numeric(), f, *cur, next)
	*cur = next
}

func (u *Updater) setInt64(m *Mod, f Field, cur *int64, next int64, byCrawler bool) {
	if u.skipExcluded(m, f, byCrawler) || *cur == next {
		return
	}
	u.notes.Changed("mod %s (%d): %s changed from %d to %d", m.Name, m.ID.Numeric(), f, *cur, next)
	*cur = next
}

func (u *Updater) setTime(m *Mod, f Field, cur *time.Time, next time.Time, byCrawler bool) {
	if u.skipExcluded(m, f, byCrawler) || cur.Equal(next) {
		return
	}
	u.notes.Changed("mod %s (%d): %s changed from %s to %s", m.Name, m.ID.Numeric(), f,
		formatDate(*cur), formatDate(next))
	*cur = next
}

func (u *Updater) setStability(m *Mod, next Stability, byCrawler bool) {
	if u.skipExcluded(m, FieldStability, byCrawler) || m.Stability == next {
		return
	}
	u.notes.Changed("mod %s (%d): stability changed from %s to %s", m.Name, m.ID.Numeric(), m.Stability, next)
	m.Stability = next
}

// AddStatus sets a status flag; reports whether the set actually changed.
func (u *Updater) AddStatus(m *Mod, s Status, byCrawler bool) bool {
	if u.skipExcluded(m, FieldStatuses, byCrawler) || m.HasStatus(s) {
		return false
	}
	m.Statuses = append(m.Statuses, s)
	u.notes.Changed("mod %s (%d): status %s set", m.Name, m.ID.Numeric(), s)
	return true
}

// RemoveStatus clears a status flag; reports whether the set actually changed.
func (u *Updater) RemoveStatus(m *Mod, s Status, byCrawler bool) bool {
	if u.skipExcluded(m, FieldStatuses, byCrawler) || !m.HasStatus(s) {
		return false
	}
	kept := m.Statuses[:0]
	for _, have := range m.Statuses {
		if have != s {
			kept = append(kept, have)
		}
	}
	m.Statuses = kept
	u.notes.Changed("mod %s (%d): status %s cleared", m.Name, m.ID.Numeric(), s)
	return true
}

// AddRequiredDLC records a DLC requirement; skipped entirely under exclusion.
func (u *Updater) AddRequiredDLC(m *Mod, dlc string, byCrawler bool) bool {
	if u.skipExcluded(m, FieldRequiredDLC, byCrawler) || m.RequiresDLC(dlc) {
		return false
	}
	m.RequiredDLC = append(m.RequiredDLC, dlc)
	u.notes.Changed("mod %s (%d): required DLC %s added", m.Name, m.ID.Numeric(), dlc)
	return true
}

// AddRequiredMod records a required mod or group ID; skipped under exclusion
// and for IDs that cannot name a mod or group.
func (u *Updater) AddRequiredMod(m *Mod, id int64, byCrawler bool) bool {
	kind, ok := ClassifyID(id)
	if !ok || kind == KindLocal {
		u.log.Warnw("Ignoring invalid required-mod id",
			zap.Int64("mod", m.ID.Numeric()), zap.Int64("required", id))
		return false
	}
	if u.skipExcluded(m, FieldRequiredMods, byCrawler) || m.RequiresMod(id) {
		return false
	}
	m.RequiredMods = append(m.RequiredMods, id)
	u.notes.Changed("mod %s (%d): required mod %d added", m.Name, m.ID.Numeric(), id)
	return true
}

// GetOrAddAuthor resolves an author by Steam ID first, then custom URL, and
// creates one on a total miss. Name updates follow the same equality-skip
// rule as mod fields. When an author first seen under a custom URL later
// shows up with a numeric ID, the ID becomes the primary key.
func (u *Updater) GetOrAddAuthor(steamID int64, customURL, name string) *Author {
	if steamID == 0 && customURL == "" {
		return nil
	}
	a := u.cat.GetAuthor(steamID, customURL)
	if a == nil {
		a = &Author{SteamID: steamID, CustomURL: customURL, Name: name}
		if err := u.cat.AddAuthor(a); err != nil {
			u.log.Warnw("Failed to add author", zap.String("name", name), zap.Error(err))
			return nil
		}
		u.notes.Added("author %s", a.Key())
		return a
	}
	if steamID != 0 && a.SteamID == 0 {
		a.SteamID = steamID
		u.cat.indexAuthor(a)
		u.notes.Changed("author %s: steam id %d recorded", a.Key(), steamID)
	}
	if customURL != "" && a.CustomURL == "" {
		a.CustomURL = customURL
		u.cat.indexAuthor(a)
		u.notes.Changed("author %s: custom url %s recorded", a.Key(), customURL)
	}
	if name != "" && a.Name != name {
		u.notes.Changed("author %s: name changed from %q to %q", a.Key(), a.Name, name)
		a.Name = name
	}
	return a
}

// TouchAuthor advances the author's last-seen time and clears the retired
// flag on any fresh activity.
func (u *Updater) TouchAuthor(a *Author, seen time.Time) {
	if a == nil || seen.IsZero() || !seen.After(a.LastSeen) {
		return
	}
	a.LastSeen = seen
	if a.Retired {
		a.Retired = false
		u.notes.Changed("author %s: no longer retired", a.Key())
	}
}

// EvaluateRetirement flags every author whose last observed update is older
// than the inactivity window, measured back from the session review date.
func (u *Updater) EvaluateRetirement(months int) {
	asOf := u.reviewDate
	if asOf.IsZero() {
		asOf = time.Now()
	}
	cutoff := asOf.AddDate(0, -months, 0)
	for _, a := range u.cat.Authors {
		if a.Retired || a.LastSeen.IsZero() || !a.LastSeen.Before(cutoff) {
			continue
		}
		a.Retired = true
		u.notes.Changed("author %s: retired (last seen %s)", a.Key(), formatDate(a.LastSeen))
	}
}

// Key returns the author's display key: the name when known, otherwise the
// primary identifier.
func (a *Author) Key() string {
	if a.Name != "" {
		return a.Name
	}
	if a.SteamID != 0 {
		return strconv.FormatInt(a.SteamID, 10)
	}
	return a.CustomURL
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("2006-01-02")
}
