package timetable

import (
	"sort"
	"sync"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// Scope identifies one grade's timetable for a term within a school.
type Scope struct {
	Tenant  string
	TermID  string
	GradeID string
}

// Cell is a (day, period) coordinate of the weekly grid.
type Cell struct {
	DayOfWeek  int    `json:"day_of_week"`
	TimeSlotID string `json:"time_slot_id"`
}

// Grid is the in-memory projection of committed lesson entries. It is reloaded
// wholesale from the persistence backend and patched only after acknowledged writes.
type Grid struct {
	mu     sync.RWMutex
	scopes map[Scope]map[string]models.LessonEntry
}

// NewGrid creates an empty grid.
func NewGrid() *Grid {
	return &Grid{scopes: make(map[Scope]map[string]models.LessonEntry)}
}

// Loaded reports whether the scope has been populated.
func (g *Grid) Loaded(scope Scope) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.scopes[scope]
	return ok
}

// Replace discards the scope contents and stores the given entries.
func (g *Grid) Replace(scope Scope, entries []models.LessonEntry) {
	byID := make(map[string]models.LessonEntry, len(entries))
	for _, e := range entries {
		if e.TermID != scope.TermID || e.GradeID != scope.GradeID {
			continue
		}
		byID[e.ID] = e
	}
	g.mu.Lock()
	g.scopes[scope] = byID
	g.mu.Unlock()
}

// Invalidate forgets a scope so the next read reloads it.
func (g *Grid) Invalidate(scope Scope) {
	g.mu.Lock()
	delete(g.scopes, scope)
	g.mu.Unlock()
}

// Put stores an acknowledged entry in its scope when the scope is loaded.
// A pending placeholder for the same cell is dropped.
func (g *Grid) Put(tenant string, entry models.LessonEntry) {
	scope := Scope{Tenant: tenant, TermID: entry.TermID, GradeID: entry.GradeID}
	g.mu.Lock()
	defer g.mu.Unlock()
	items, ok := g.scopes[scope]
	if !ok {
		return
	}
	for id, existing := range items {
		if existing.Pending() && existing.DayOfWeek == entry.DayOfWeek &&
			existing.TimeSlotID == entry.TimeSlotID && existing.Stream() == entry.Stream() {
			delete(items, id)
		}
	}
	items[entry.ID] = entry
}

// Remove drops an entry by id from every loaded scope of the tenant.
func (g *Grid) Remove(tenant, id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for scope, items := range g.scopes {
		if scope.Tenant != tenant {
			continue
		}
		delete(items, id)
	}
}

// Entries returns the scope's entries ordered by day, slot and stream.
func (g *Grid) Entries(scope Scope) []models.LessonEntry {
	g.mu.RLock()
	items := g.scopes[scope]
	out := make([]models.LessonEntry, 0, len(items))
	for _, e := range items {
		out = append(out, e)
	}
	g.mu.RUnlock()
	SortEntries(out)
	return out
}

// EntriesFor maps each occupied cell of the scope to its entries. Whole-grade entries
// occupy a cell alone; stream entries may share a cell with other streams.
func (g *Grid) EntriesFor(scope Scope) map[Cell][]models.LessonEntry {
	cells := make(map[Cell][]models.LessonEntry)
	for _, e := range g.Entries(scope) {
		key := Cell{DayOfWeek: e.DayOfWeek, TimeSlotID: e.TimeSlotID}
		cells[key] = append(cells[key], e)
	}
	return cells
}

// SortEntries orders entries by day, time slot, stream and id.
func SortEntries(entries []models.LessonEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.TimeSlotID != b.TimeSlotID {
			return a.TimeSlotID < b.TimeSlotID
		}
		if a.Stream() != b.Stream() {
			return a.Stream() < b.Stream()
		}
		return a.ID < b.ID
	})
}
