package engine

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is the reference Store implementation. It keeps the whole game
// graph in process memory with deterministic iteration order, which makes it
// both the default backend for local play and the harness the engine tests
// run against. A MemoryStore is scoped to one game session; sessions must
// never share one.
type MemoryStore struct {
	mu sync.Mutex

	players    []Player
	cards      map[Category][]Card
	access     map[string][]Card          // room name -> outgoing rooms, insertion order
	location   map[string]Card            // player name -> current room
	possession map[string]map[string]bool // player name -> card name -> held
	order      map[string][]Card          // player name -> held cards, deal order
	beliefs    []Belief                   // append-only ledger, all owners
}

// NewMemoryStore returns an empty store. Use the setup package (or the Add*
// methods directly) to install a game before starting a session.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cards:      make(map[Category][]Card),
		access:     make(map[string][]Card),
		location:   make(map[string]Card),
		possession: make(map[string]map[string]bool),
		order:      make(map[string][]Card),
	}
}

// ---------------------------------------------------------------------------
// Setup mutators
// ---------------------------------------------------------------------------

// AddCard registers a card in the fixed universe.
func (s *MemoryStore) AddCard(_ context.Context, c Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[c.Category] = append(s.cards[c.Category], c)
	return nil
}

// AddPlayer registers a player and places them in startRoom.
func (s *MemoryStore) AddPlayer(_ context.Context, p Player, startRoom Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = append(s.players, p)
	s.location[p.Name] = startRoom
	return nil
}

// AddAccess registers one directed access edge between rooms.
func (s *MemoryStore) AddAccess(_ context.Context, from, to Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access[from.Name] = append(s.access[from.Name], to)
	return nil
}

// AddPossession records that player physically holds card.
func (s *MemoryStore) AddPossession(_ context.Context, player string, c Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.possession[player] == nil {
		s.possession[player] = make(map[string]bool)
	}
	s.possession[player][c.Name] = true
	s.order[player] = append(s.order[player], c)
	return nil
}

// ---------------------------------------------------------------------------
// Store implementation
// ---------------------------------------------------------------------------

func (s *MemoryStore) Players(context.Context) ([]Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Player, len(s.players))
	copy(out, s.players)
	return out, nil
}

func (s *MemoryStore) CurrentRoom(_ context.Context, player string) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.location[player]
	if !ok {
		return Card{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, player)
	}
	return room, nil
}

func (s *MemoryStore) SetCurrentRoom(_ context.Context, player string, room Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.location[player]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, player)
	}
	s.location[player] = room
	return nil
}

func (s *MemoryStore) AdjacentRooms(_ context.Context, room Card) ([]Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Card, len(s.access[room.Name]))
	copy(out, s.access[room.Name])
	return out, nil
}

func (s *MemoryStore) Possesses(_ context.Context, player string, c Card) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.possession[player][c.Name], nil
}

func (s *MemoryStore) PlayerCards(_ context.Context, player string) ([]Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Card, len(s.order[player]))
	copy(out, s.order[player])
	return out, nil
}

func (s *MemoryStore) RecordBelief(_ context.Context, b Belief) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beliefs = append(s.beliefs, b)
	return nil
}

func (s *MemoryStore) QueryBeliefs(_ context.Context, owner, subject string, cat Category) (map[string]Polarity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Polarity)
	for _, b := range s.beliefs {
		if b.Owner != owner || b.Subject != subject || b.Card.Category != cat {
			continue
		}
		// A possession belief is definitive; never let a later negative
		// overwrite it in the view.
		if prev, ok := out[b.Card.Name]; ok && prev == Possesses {
			continue
		}
		out[b.Card.Name] = b.Polarity
	}
	return out, nil
}

func (s *MemoryStore) PositiveBeliefs(_ context.Context, owner string) ([]Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var out []Card
	for _, b := range s.beliefs {
		if b.Owner != owner || b.Polarity != Possesses || seen[b.Card.Name] {
			continue
		}
		seen[b.Card.Name] = true
		out = append(out, b.Card)
	}
	return out, nil
}

func (s *MemoryStore) AllCards(_ context.Context, cat Category) ([]Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Card, len(s.cards[cat]))
	copy(out, s.cards[cat])
	return out, nil
}

// BeliefCount returns the total number of ledger entries across all owners.
// Exposed for monotonicity checks.
func (s *MemoryStore) BeliefCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.beliefs)
}
