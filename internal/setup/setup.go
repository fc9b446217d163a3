// Package setup builds a fresh game: players and their embodied characters,
// the full card universe, the board topology, the hidden solution, and the
// round-robin deal of every remaining card.
package setup

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/lhoussin/limier/engine"
)

// Seeder is the bulk-load surface both storage backends expose. Setup only
// ever adds: a game is seeded once and never re-seeded.
type Seeder interface {
	AddCard(ctx context.Context, c engine.Card) error
	AddPlayer(ctx context.Context, p engine.Player, startRoom engine.Card) error
	AddAccess(ctx context.Context, from, to engine.Card) error
	AddPossession(ctx context.Context, player string, c engine.Card) error
}

// SeederStore is a backend that can be seeded and then played against. Both
// engine.MemoryStore and database.GraphStore satisfy it.
type SeederStore interface {
	Seeder
	engine.Store
}

const (
	// MinPlayers is the smallest playable table.
	MinPlayers = 2

	minNameLen = 4
	maxNameLen = 16
)

var (
	ErrTooFewPlayers  = errors.New("setup: at least two players required")
	ErrTooManyPlayers = errors.New("setup: more players than characters")
	ErrBadName        = errors.New("setup: player name must be 4 to 16 characters")
	ErrDuplicateName  = errors.New("setup: player name already taken")
	ErrNoRNG          = errors.New("setup: rng is required")
)

// Options configures one game.
type Options struct {
	// HumanNames are the interactive players, in seating order. Bots are
	// seated after them.
	HumanNames []string
	Bots       int

	// RNG drives solution selection and the deal shuffle. Per game; sharing
	// one across games is fine, across concurrent games is not.
	RNG *rand.Rand

	// Chooser, when non-nil, lets each human pick the character they embody
	// from the ones still free. Bots always take the next free character in
	// registry order, and so do humans when Chooser is nil.
	Chooser engine.Prompter
}

// Game is the seeded result. Solution is the hidden murder triple; it is
// never written to the store, so no store query can leak it.
type Game struct {
	Players  []engine.Player
	Solution engine.Accusation
}

// NewGame validates opts, seeds the store and deals the cards. Humans embody
// a character they pick (or the next free one), then bots take the remaining
// ones in registry order; bot names are generated. The solution is drawn
// from the full universe, so an embodied character can still be the
// murderer.
func NewGame(ctx context.Context, s Seeder, opts Options) (*Game, error) {
	if opts.RNG == nil {
		return nil, ErrNoRNG
	}
	total := len(opts.HumanNames) + opts.Bots
	if total < MinPlayers {
		return nil, ErrTooFewPlayers
	}
	characters := engine.Characters()
	if total > len(characters) {
		return nil, fmt.Errorf("%w: %d players, %d characters", ErrTooManyPlayers, total, len(characters))
	}

	players, err := buildPlayers(ctx, opts, characters)
	if err != nil {
		return nil, err
	}

	if err := seedUniverse(ctx, s); err != nil {
		return nil, err
	}
	for _, p := range players {
		if err := s.AddPlayer(ctx, p, engine.StartRoom()); err != nil {
			return nil, fmt.Errorf("seeding player %s: %w", p.Name, err)
		}
	}

	solution := engine.Accusation{
		Character: pick(opts.RNG, characters),
		Weapon:    pick(opts.RNG, engine.Weapons()),
		Room:      pick(opts.RNG, engine.Rooms()),
	}

	if err := deal(ctx, s, opts.RNG, players, solution); err != nil {
		return nil, err
	}

	return &Game{Players: players, Solution: solution}, nil
}

func buildPlayers(ctx context.Context, opts Options, characters []engine.Card) ([]engine.Player, error) {
	players := make([]engine.Player, 0, len(opts.HumanNames)+opts.Bots)
	seen := make(map[string]bool, len(opts.HumanNames))
	remaining := append([]engine.Card(nil), characters...)

	for _, name := range opts.HumanNames {
		if len(name) < minNameLen || len(name) > maxNameLen {
			return nil, fmt.Errorf("%w: %q", ErrBadName, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		seen[name] = true

		idx := 0
		if opts.Chooser != nil {
			names := make([]string, len(remaining))
			for i, c := range remaining {
				names[i] = c.Name
			}
			picked, err := opts.Chooser.Choose(ctx,
				fmt.Sprintf("Select the character %s will embody:", name), names)
			if err != nil {
				return nil, fmt.Errorf("choosing character for %s: %w", name, err)
			}
			idx = picked
		}
		players = append(players, engine.Player{
			Name:      name,
			Mode:      engine.ModeHuman,
			Character: remaining[idx],
		})
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	for i := 0; i < opts.Bots; i++ {
		name := fmt.Sprintf("Bot %d", i+1)
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		players = append(players, engine.Player{
			Name:      name,
			Mode:      engine.ModeBot,
			Character: remaining[0],
		})
		remaining = remaining[1:]
	}
	return players, nil
}

// seedUniverse loads every card and the directed board topology.
func seedUniverse(ctx context.Context, s Seeder) error {
	for _, cat := range engine.Categories {
		for _, c := range engine.AllCards(cat) {
			if err := s.AddCard(ctx, c); err != nil {
				return fmt.Errorf("seeding card %s: %w", c.Name, err)
			}
		}
	}
	for _, e := range engine.BoardAccess() {
		if err := s.AddAccess(ctx, e.From, e.To); err != nil {
			return fmt.Errorf("seeding access %s -> %s: %w", e.From.Name, e.To.Name, err)
		}
	}
	return nil
}

// deal shuffles every card outside the solution and distributes them
// round-robin from the first seat. Room cards are dealt like any other.
func deal(ctx context.Context, s Seeder, rng *rand.Rand, players []engine.Player, solution engine.Accusation) error {
	var deck []engine.Card
	for _, cat := range engine.Categories {
		for _, c := range engine.AllCards(cat) {
			if c.Name == solution.Character.Name || c.Name == solution.Weapon.Name || c.Name == solution.Room.Name {
				continue
			}
			deck = append(deck, c)
		}
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	for i, c := range deck {
		p := players[i%len(players)]
		if err := s.AddPossession(ctx, p.Name, c); err != nil {
			return fmt.Errorf("dealing %s to %s: %w", c.Name, p.Name, err)
		}
	}
	return nil
}

func pick(rng *rand.Rand, cards []engine.Card) engine.Card {
	return cards[rng.IntN(len(cards))]
}
