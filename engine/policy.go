package engine

import (
	"context"
	"fmt"
)

// Prompter is the presentation/input collaborator. Implementations own all
// rendering and input recovery: an out-of-range selection is re-prompted
// locally and never surfaces to the engine. Choose blocks until the user
// answers; there is deliberately no engine-level deadline.
type Prompter interface {
	// Choose presents options and returns the index of the selection.
	Choose(ctx context.Context, prompt string, options []string) (int, error)

	// Notify displays a one-line announcement.
	Notify(msg string)

	// Pause blocks until the user acknowledges, between turns.
	Pause(ctx context.Context) error

	// ShowCards renders a player's own hand, grouped by category.
	ShowCards(player string, cards []Card)

	// ShowNotebook renders a player's detective notebook.
	ShowNotebook(nb *Notebook)
}

// Policy makes every decision one player faces during a turn. The session
// calls exactly one method per phase; ChooseReveal is called on the policy of
// the questioned player, not the mover's.
type Policy interface {
	ChooseRoom(ctx context.Context, p Player, current Card, adjacent []Card) (Card, error)
	ChooseWeapon(ctx context.Context, p Player, weapons []Card) (Card, error)
	ChooseCharacter(ctx context.Context, p Player, characters []Card) (Card, error)
	ChooseTarget(ctx context.Context, p Player, others []Player) (Player, error)
	ChooseReveal(ctx context.Context, p Player, candidates []Card) (Card, error)
}

// Human side actions offered before every room/weapon/character selection.
// They loop back to the same selection without consuming the turn step.
const (
	sideViewCards    = 0
	sideViewNotebook = 1
	sideActionCount  = 2
)

// HumanPolicy drives decisions through the Prompter. Room, weapon and
// character selections always carry the two side actions (view my cards,
// view my notebook); target and reveal selections are plain choices.
type HumanPolicy struct {
	Store    Store
	Prompter Prompter
}

// NewHumanPolicy returns a prompter-backed policy.
func NewHumanPolicy(st Store, pr Prompter) *HumanPolicy {
	return &HumanPolicy{Store: st, Prompter: pr}
}

// chooseCard loops over the extended option list until a real card (not a
// side action) is picked.
func (h *HumanPolicy) chooseCard(ctx context.Context, p Player, prompt string, cards []Card) (Card, error) {
	options := make([]string, 0, sideActionCount+len(cards))
	options = append(options, "View my cards", "View my notebook")
	for _, c := range cards {
		options = append(options, c.Name)
	}

	for {
		idx, err := h.Prompter.Choose(ctx, prompt, options)
		if err != nil {
			return Card{}, err
		}
		switch idx {
		case sideViewCards:
			held, err := h.Store.PlayerCards(ctx, p.Name)
			if err != nil {
				return Card{}, err
			}
			h.Prompter.ShowCards(p.Name, held)
		case sideViewNotebook:
			nb, err := BuildNotebook(ctx, h.Store, p)
			if err != nil {
				return Card{}, err
			}
			h.Prompter.ShowNotebook(nb)
		default:
			return cards[idx-sideActionCount], nil
		}
	}
}

func (h *HumanPolicy) ChooseRoom(ctx context.Context, p Player, current Card, adjacent []Card) (Card, error) {
	prompt := fmt.Sprintf("%s is in %s. Choose a room to enter, or review your information:", p.Name, current.Name)
	return h.chooseCard(ctx, p, prompt, adjacent)
}

func (h *HumanPolicy) ChooseWeapon(ctx context.Context, p Player, weapons []Card) (Card, error) {
	return h.chooseCard(ctx, p, "Select a weapon for your hypothesis:", weapons)
}

func (h *HumanPolicy) ChooseCharacter(ctx context.Context, p Player, characters []Card) (Card, error) {
	return h.chooseCard(ctx, p, "Select a character for your hypothesis:", characters)
}

func (h *HumanPolicy) ChooseTarget(ctx context.Context, p Player, others []Player) (Player, error) {
	options := make([]string, len(others))
	for i, o := range others {
		options[i] = o.Name
	}
	idx, err := h.Prompter.Choose(ctx, "Choose which player to question:", options)
	if err != nil {
		return Player{}, err
	}
	return others[idx], nil
}

func (h *HumanPolicy) ChooseReveal(ctx context.Context, p Player, candidates []Card) (Card, error) {
	// A single matching card is shown without a prompt.
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	options := make([]string, len(candidates))
	for i, c := range candidates {
		options[i] = c.Name
	}
	prompt := fmt.Sprintf("%s holds several matching cards. Which one do you show?", p.Name)
	idx, err := h.Prompter.Choose(ctx, prompt, options)
	if err != nil {
		return Card{}, err
	}
	return candidates[idx], nil
}
