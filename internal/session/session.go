// Package session holds one user's symptom selection. It is passed
// explicitly to the diagnosis service instead of living in global state.
package session

import (
	"slices"
	"sort"
	"sync"

	"medibot/domain/diagnosis"
	"medibot/internal/errors"
	"medibot/internal/tabular"

	"github.com/google/uuid"
)

// Session is safe for concurrent use.
type Session struct {
	ID string

	mu       sync.RWMutex
	selected map[string]int
	order    []string // selection order, first pick first
}

// New creates an empty session with a fresh ID.
func New() *Session {
	return &Session{ID: uuid.NewString(), selected: make(map[string]int)}
}

// FromItems creates a session pre-filled with items; severities are clamped.
func FromItems(items []diagnosis.Item) *Session {
	s := New()
	for _, it := range items {
		s.SetSeverity(it.Name, it.Severity)
	}
	return s
}

// Toggle selects symptom at minimum severity, or deselects it when already selected.
// It reports whether the symptom is selected afterwards.
func (s *Session) Toggle(symptom string) bool {
	key := tabular.NormalizeValue(symptom)
	if key == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.selected[key]; ok {
		delete(s.selected, key)
		s.order = slices.DeleteFunc(s.order, func(name string) bool { return name == key })
		return false
	}
	s.selected[key] = diagnosis.MinSeverity
	s.order = append(s.order, key)
	return true
}

// SetSeverity selects symptom with severity clamped to [1,5]. A symptom
// already selected keeps its position in the selection order.
func (s *Session) SetSeverity(symptom string, severity int) {
	key := tabular.NormalizeValue(symptom)
	if key == "" {
		return
	}
	if severity < diagnosis.MinSeverity {
		severity = diagnosis.MinSeverity
	}
	if severity > diagnosis.MaxSeverity {
		severity = diagnosis.MaxSeverity
	}

	s.mu.Lock()
	if _, ok := s.selected[key]; !ok {
		s.order = append(s.order, key)
	}
	s.selected[key] = severity
	s.mu.Unlock()
}

// Clear removes every selection.
func (s *Session) Clear() {
	s.mu.Lock()
	s.selected = make(map[string]int)
	s.order = nil
	s.mu.Unlock()
}

// Items returns the selections sorted by name.
func (s *Session) Items() []diagnosis.Item {
	s.mu.RLock()
	items := make([]diagnosis.Item, 0, len(s.selected))
	for name, sev := range s.selected {
		items = append(items, diagnosis.Item{Name: name, Severity: sev})
	}
	s.mu.RUnlock()

	sort.Slice(items, func(a, b int) bool { return items[a].Name < items[b].Name })
	return items
}

// Query returns the selected symptom names in selection order, or an
// EMPTY_QUERY error when nothing is selected.
func (s *Session) Query() ([]string, error) {
	s.mu.RLock()
	names := slices.Clone(s.order)
	s.mu.RUnlock()

	if len(names) == 0 {
		return nil, errors.EmptyQuery("no symptoms selected")
	}
	return names, nil
}
