// Package agent implements the automated player policy: uniform-random
// movement and targeting, belief-filtered hypothesis selection, and an
// information-minimizing card reveal.
package agent

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/lhoussin/limier/engine"
)

// Bot makes every turn decision without user interaction. It reads the same
// Store the session uses; its only private state is the injected RNG. The
// hypothesis policy is a deliberate random-exploration heuristic, not an
// optimal solver: it filters out cards it already believes placed, then picks
// uniformly from what remains.
type Bot struct {
	Store engine.Store
	RNG   *rand.Rand
}

// New returns a bot policy over st using the given RNG. The RNG must be
// per-session; bots sharing one is fine, sessions sharing one is not.
func New(st engine.Store, rng *rand.Rand) *Bot {
	return &Bot{Store: st, RNG: rng}
}

// NewSeeded returns a bot with a PCG RNG seeded deterministically.
func NewSeeded(st engine.Store, seed uint64) *Bot {
	return New(st, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// ChooseRoom picks uniformly among the adjacent rooms. The session guarantees
// the set is non-empty; a dead-end room is a setup-invariant violation caught
// before the policy runs.
func (b *Bot) ChooseRoom(_ context.Context, _ engine.Player, _ engine.Card, adjacent []engine.Card) (engine.Card, error) {
	if len(adjacent) == 0 {
		return engine.Card{}, engine.ErrEmptyAdjacency
	}
	return adjacent[b.RNG.IntN(len(adjacent))], nil
}

// ChooseWeapon picks uniformly among the weapons not yet believed placed.
func (b *Bot) ChooseWeapon(ctx context.Context, p engine.Player, weapons []engine.Card) (engine.Card, error) {
	return b.chooseUnknown(ctx, p, weapons)
}

// ChooseCharacter picks uniformly among the characters not yet believed placed.
func (b *Bot) ChooseCharacter(ctx context.Context, p engine.Player, characters []engine.Card) (engine.Card, error) {
	return b.chooseUnknown(ctx, p, characters)
}

// chooseUnknown filters out every card for which the bot holds a positive
// possession belief (about anyone, itself included), then samples uniformly.
// If the filter empties the list — everything is believed placed — it falls
// back to the full list rather than stalling the turn.
func (b *Bot) chooseUnknown(ctx context.Context, p engine.Player, cards []engine.Card) (engine.Card, error) {
	known, err := b.Store.PositiveBeliefs(ctx, p.Name)
	if err != nil {
		return engine.Card{}, fmt.Errorf("filtering known possessions for %s: %w", p.Name, err)
	}
	placed := make(map[string]bool, len(known))
	for _, c := range known {
		placed[c.Name] = true
	}

	remaining := make([]engine.Card, 0, len(cards))
	for _, c := range cards {
		if !placed[c.Name] {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		remaining = cards
	}
	return remaining[b.RNG.IntN(len(remaining))], nil
}

// ChooseTarget picks uniformly among the other players.
func (b *Bot) ChooseTarget(_ context.Context, _ engine.Player, others []engine.Player) (engine.Player, error) {
	if len(others) == 0 {
		return engine.Player{}, engine.ErrNoPlayers
	}
	return others[b.RNG.IntN(len(others))], nil
}

// ChooseReveal prefers a candidate this bot has shown before, so repeated
// questioning keeps extracting the same secret instead of a new one. The
// previously-shown set is the bot's own self-attributed possession beliefs,
// recorded by the session at reveal time. With no previously-shown candidate
// the pick is uniform.
func (b *Bot) ChooseReveal(ctx context.Context, p engine.Player, candidates []engine.Card) (engine.Card, error) {
	if len(candidates) == 0 {
		return engine.Card{}, fmt.Errorf("reveal requested with no candidates for %s", p.Name)
	}

	known, err := b.Store.PositiveBeliefs(ctx, p.Name)
	if err != nil {
		return engine.Card{}, fmt.Errorf("loading prior reveals for %s: %w", p.Name, err)
	}
	prior := make(map[string]bool, len(known))
	for _, c := range known {
		prior[c.Name] = true
	}
	for _, c := range candidates {
		if prior[c.Name] {
			return c, nil
		}
	}
	return candidates[b.RNG.IntN(len(candidates))], nil
}
