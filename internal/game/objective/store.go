package objective

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Store holds the player's objectives keyed by ID.
//
// Store is safe for concurrent use. Every record it returns is a deep copy,
// so readers enumerating objectives never observe a record that a concurrent
// Toggle, Add or Remove is replacing.
type Store struct {
	mu         sync.RWMutex
	objectives map[string]Objective
	logger     *zap.Logger
}

// NewStore returns an empty Store.
//
// Precondition: logger must be non-nil.
// Postcondition: Len() == 0.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		objectives: make(map[string]Objective),
		logger:     logger,
	}
}

// Add stores o, replacing any objective with the same ID.
//
// Postcondition: Get(o.ID) returns a value equal to o.
func (s *Store) Add(o Objective) {
	s.mu.Lock()
	_, replaced := s.objectives[o.ID]
	s.objectives[o.ID] = o.Clone()
	s.mu.Unlock()

	s.logger.Debug("objective added",
		zap.String("id", o.ID),
		zap.String("type", string(o.Type)),
		zap.Bool("replaced", replaced),
	)
}

// Get returns the objective with the given ID.
//
// Postcondition: Returns (objective, true) if found, or (zero, false) otherwise.
func (s *Store) Get(id string) (Objective, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objectives[id]
	if !ok {
		return Objective{}, false
	}
	return o.Clone(), true
}

// All returns a snapshot of every objective, ordered by ID.
//
// Postcondition: Returns a non-nil slice; may be empty.
func (s *Store) All() []Objective {
	return s.snapshot(func(Objective) bool { return true })
}

// Active returns a snapshot of the active objectives, ordered by ID.
//
// Postcondition: Returns a non-nil slice; every element has Active == true.
func (s *Store) Active() []Objective {
	return s.snapshot(func(o Objective) bool { return o.Active })
}

func (s *Store) snapshot(keep func(Objective) bool) []Objective {
	s.mu.RLock()
	out := make([]Objective, 0, len(s.objectives))
	for _, o := range s.objectives {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Toggle flips whether the objective with the given ID is active by replacing
// the stored record with o.WithActive(!o.Active). Unknown IDs are ignored.
//
// Postcondition: Returns the replacement and true, or (zero, false) if id is unknown.
func (s *Store) Toggle(id string) (Objective, bool) {
	s.mu.Lock()
	existing, ok := s.objectives[id]
	if !ok {
		s.mu.Unlock()
		return Objective{}, false
	}
	updated := existing.WithActive(!existing.Active)
	s.objectives[id] = updated
	s.mu.Unlock()

	s.logger.Debug("objective toggled",
		zap.String("id", id),
		zap.Bool("active", updated.Active),
	)
	return updated.Clone(), true
}

// Remove deletes the objective with the given ID.
//
// Postcondition: Returns true iff an objective was removed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	_, ok := s.objectives[id]
	delete(s.objectives, id)
	s.mu.Unlock()

	if ok {
		s.logger.Debug("objective removed", zap.String("id", id))
	}
	return ok
}

// Len returns the number of stored objectives.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objectives)
}
