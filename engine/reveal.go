package engine

import (
	"context"
	"fmt"
)

// Resolution summarizes the outcome of one hypothesis against one target.
type Resolution struct {
	// Repeated is true when a bot target had already answered this exact
	// hypothesis. Nothing else happens on a repeat: no reveal, no new
	// beliefs.
	Repeated bool

	// Revealed holds the shown card, nil when no card was shown.
	Revealed *Card
}

// resolveHypothesis determines whether the target must show a card and
// updates the questioner's belief ledger. Only the questioner's ledger is
// written (plus the bot's own self-attribution on reveal); the target's
// ground-truth possession is never touched.
func (s *Session) resolveHypothesis(ctx context.Context, questioner, target Player, hyp Hypothesis) (Resolution, error) {
	// Hypothesis idempotence guard for bot targets: record the key before
	// resolving so even a no-reveal answer is asked at most once.
	if target.Mode == ModeBot {
		mem := s.memories[target.Name]
		if mem == nil {
			mem = NewBotMemory()
			s.memories[target.Name] = mem
		}
		if mem.Seen(hyp) {
			s.prompter.Notify(fmt.Sprintf("%s has already answered this hypothesis in this room.", target.Name))
			s.emit(Event{Type: EventRepeatHypothesis, Player: questioner.Name, Target: target.Name, Hypothesis: &hyp})
			return Resolution{Repeated: true}, nil
		}
		mem.Record(hyp)
	}

	candidates, err := s.revealCandidates(ctx, target, hyp)
	if err != nil {
		return Resolution{}, err
	}

	if len(candidates) == 0 {
		if err := s.recordNoPossession(ctx, questioner, target, hyp); err != nil {
			return Resolution{}, err
		}
		s.prompter.Notify(fmt.Sprintf("%s shows no card.", target.Name))
		s.emit(Event{Type: EventNoReveal, Player: questioner.Name, Target: target.Name, Hypothesis: &hyp})
		return Resolution{}, nil
	}

	revealed, err := s.policies[target.Name].ChooseReveal(ctx, target, candidates)
	if err != nil {
		return Resolution{}, err
	}

	// The questioner learns the card, attributed to the target.
	if err := s.store.RecordBelief(ctx, Belief{
		Owner:    questioner.Name,
		Subject:  target.Name,
		Card:     revealed,
		Polarity: Possesses,
		Source:   target.Name,
	}); err != nil {
		return Resolution{}, err
	}

	// A bot also self-attributes the reveal, so the same card is preferred
	// the next time it must show one and is dropped from its own future
	// hypotheses. This is what keeps repeated questioning from leaking a
	// second distinct secret.
	if target.Mode == ModeBot {
		if err := s.store.RecordBelief(ctx, Belief{
			Owner:    target.Name,
			Subject:  target.Name,
			Card:     revealed,
			Polarity: Possesses,
			Source:   target.Name,
		}); err != nil {
			return Resolution{}, err
		}
	}

	s.prompter.Notify(fmt.Sprintf("%s shows the card %s.", target.Name, revealed.Name))
	s.emit(Event{Type: EventCardRevealed, Player: questioner.Name, Target: target.Name, Card: &revealed})
	return Resolution{Revealed: &revealed}, nil
}

// revealCandidates returns the ordered subset of {character, weapon} the
// target physically holds. The character is checked first and that order is
// preserved; the room card is never checked for possession.
func (s *Session) revealCandidates(ctx context.Context, target Player, hyp Hypothesis) ([]Card, error) {
	var candidates []Card
	for _, c := range []Card{hyp.Character, hyp.Weapon} {
		held, err := s.store.Possesses(ctx, target.Name, c)
		if err != nil {
			return nil, fmt.Errorf("checking possession of %s by %s: %w", c.Name, target.Name, err)
		}
		if held {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

// recordNoPossession writes the three negative beliefs for an empty candidate
// set. The room is marked too, even though its possession was never checked:
// a no-show clears the whole triple in the questioner's notebook.
func (s *Session) recordNoPossession(ctx context.Context, questioner, target Player, hyp Hypothesis) error {
	for _, c := range []Card{hyp.Character, hyp.Weapon, hyp.Room} {
		if err := s.store.RecordBelief(ctx, Belief{
			Owner:    questioner.Name,
			Subject:  target.Name,
			Card:     c,
			Polarity: DoesNotPossess,
			Source:   target.Name,
		}); err != nil {
			return err
		}
	}
	s.prompter.Notify(fmt.Sprintf("%s notes that %s holds neither %s, %s, nor %s.",
		questioner.Name, target.Name, hyp.Character.Name, hyp.Weapon.Name, hyp.Room.Name))
	return nil
}
