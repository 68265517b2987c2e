package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"pantrypilot/recipe"
)

// MemoryStore keeps recipes in insertion order. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	recipes []recipe.Recipe
	byID    map[string]int
	byTitle map[string]int
	newID   func() string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]int),
		byTitle: make(map[string]int),
		newID:   uuid.NewString,
	}
}

// NewMemoryStoreWith seeds the store. Seed recipes are Stored-origin; duplicate titles are skipped.
func NewMemoryStoreWith(seed []recipe.Recipe) *MemoryStore {
	s := NewMemoryStore()
	for _, r := range seed {
		s.insert(r)
	}
	return s
}

func (s *MemoryStore) QueryByPrepTimeAndIngredientNames(ctx context.Context, minPrep, maxPrep int, names []string) ([]recipe.Recipe, error) {
	_ = ctx
	set := nameSet(names)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]recipe.Recipe, 0)
	for _, r := range s.recipes {
		if inWindow(r, minPrep, maxPrep, set) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, r recipe.Recipe) (recipe.Recipe, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.byTitle[r.Key()]; ok {
		return s.recipes[i].Clone(), ErrDuplicateTitle
	}
	return s.insertLocked(r), nil
}

func (s *MemoryStore) FindByTitle(ctx context.Context, title string) (recipe.Recipe, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byTitle[recipe.NormalizeTitle(title)]
	if !ok {
		return recipe.Recipe{}, ErrNotFound
	}
	return s.recipes[i].Clone(), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (recipe.Recipe, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return recipe.Recipe{}, ErrNotFound
	}
	return s.recipes[i].Clone(), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]recipe.Recipe, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recipe.CloneAll(s.recipes), nil
}

func (s *MemoryStore) insert(r recipe.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byTitle[r.Key()]; ok {
		return
	}
	s.insertLocked(r)
}

func (s *MemoryStore) insertLocked(r recipe.Recipe) recipe.Recipe {
	r = r.Clone()
	if r.ID == "" {
		r.ID = s.newID()
	}
	if r.Origin == "" {
		r.Origin = recipe.OriginStored
	}
	s.recipes = append(s.recipes, r)
	s.byID[r.ID] = len(s.recipes) - 1
	s.byTitle[r.Key()] = len(s.recipes) - 1
	return r.Clone()
}

// remove drops the recipe with id and reindexes the rest.
func (s *MemoryStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return
	}
	s.recipes = append(s.recipes[:i], s.recipes[i+1:]...)
	clear(s.byID)
	clear(s.byTitle)
	for j, r := range s.recipes {
		s.byID[r.ID] = j
		s.byTitle[r.Key()] = j
	}
}
