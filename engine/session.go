package engine

import (
	"context"
	"fmt"
)

// EventType tags the observable steps of a turn.
type EventType string

const (
	EventTurnStarted      EventType = "turn_started"
	EventMoved            EventType = "moved"
	EventHypothesisMade   EventType = "hypothesis_made"
	EventPlayerQuestioned EventType = "player_questioned"
	EventCardRevealed     EventType = "card_revealed"
	EventNoReveal         EventType = "no_reveal"
	EventRepeatHypothesis EventType = "repeat_hypothesis"
)

// Event is a fully observable summary of one turn step, delivered to the
// session's Events callback when set. Reveals are reported without the card
// to everyone but the questioner; the Card field here is the ground truth and
// is only handed to the trusted observer (the session runner), never to
// another player's policy.
type Event struct {
	Type       EventType
	Turn       int
	Player     string
	Target     string
	Room       *Card
	Card       *Card
	Hypothesis *Hypothesis
}

// AccusationChecker validates a final accusation against the hidden solution.
// No checker ships with the engine: the game never evaluates a win condition
// and the turn loop runs forever. The interface exists so a front end can
// bolt one on without altering the turn contract.
type AccusationChecker interface {
	Check(ctx context.Context, accuser Player, a Accusation) (bool, error)
}

// Session drives the unbounded round-robin over the players of one game.
// All state it owns (bot memories, turn counter) is session-scoped; running
// two sessions concurrently requires two Session values over two stores.
type Session struct {
	store    Store
	prompter Prompter
	policies map[string]Policy

	// SkipPause disables the inter-turn acknowledgment. The pause is a
	// readability aid, not part of the turn contract.
	SkipPause bool

	// Events, when non-nil, receives one callback per observable turn step.
	Events func(Event)

	// Checker, when non-nil, is consulted by SubmitAccusation. The turn loop
	// itself never accuses.
	Checker AccusationChecker

	players  []Player
	memories map[string]*BotMemory
	turn     int
	current  int
	phase    TurnPhase
}

// NewSession builds a session over the given store. policies must contain an
// entry for every player name the store reports.
func NewSession(st Store, pr Prompter, policies map[string]Policy) *Session {
	return &Session{
		store:    st,
		prompter: pr,
		policies: policies,
		memories: make(map[string]*BotMemory),
	}
}

// Turn returns the number of completed turns.
func (s *Session) Turn() int { return s.turn }

// Phase returns the phase of the turn in progress.
func (s *Session) Phase() TurnPhase { return s.phase }

func (s *Session) emit(ev Event) {
	if s.Events != nil {
		ev.Turn = s.turn
		s.Events(ev)
	}
}

// loadPlayers fetches the ordered player sequence once and validates that a
// policy exists for each.
func (s *Session) loadPlayers(ctx context.Context) error {
	players, err := s.store.Players(ctx)
	if err != nil {
		return fmt.Errorf("loading players: %w", err)
	}
	if len(players) == 0 {
		return ErrNoPlayers
	}
	for _, p := range players {
		if _, ok := s.policies[p.Name]; !ok {
			return fmt.Errorf("%w: %s", ErrNoPolicy, p.Name)
		}
	}
	s.players = players
	return nil
}

// Run executes turns forever, in setup order, until ctx is cancelled or a
// structural error occurs. There is no terminal game state.
func (s *Session) Run(ctx context.Context) error {
	if err := s.loadPlayers(ctx); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.PlayTurn(ctx); err != nil {
			return err
		}
		if !s.SkipPause {
			if err := s.prompter.Pause(ctx); err != nil {
				return err
			}
		}
	}
}

// PlayTurn executes the four-step cycle for the current player and advances
// the round-robin. Exported so tests and alternative drivers can single-step.
func (s *Session) PlayTurn(ctx context.Context) error {
	if s.players == nil {
		if err := s.loadPlayers(ctx); err != nil {
			return err
		}
	}

	p := s.players[s.current]
	policy := s.policies[p.Name]
	s.emit(Event{Type: EventTurnStarted, Player: p.Name})

	// Step 1: movement.
	s.phase = PhaseAwaitMove
	newRoom, err := s.resolveMovement(ctx, p, policy)
	if err != nil {
		return err
	}

	// Step 2: hypothesis. Weapon first, then character; the room is bound
	// implicitly to where the player just moved.
	s.phase = PhaseAwaitHypothesis
	hyp, err := s.formHypothesis(ctx, p, policy, newRoom)
	if err != nil {
		return err
	}

	// Step 3: target selection.
	s.phase = PhaseAwaitTarget
	target, err := s.chooseTarget(ctx, p, policy)
	if err != nil {
		return err
	}
	s.prompter.Notify(fmt.Sprintf("%s questions %s.", p.Name, target.Name))
	s.emit(Event{Type: EventPlayerQuestioned, Player: p.Name, Target: target.Name, Hypothesis: &hyp})

	// Step 4: revelation.
	s.phase = PhaseAwaitResolution
	if _, err := s.resolveHypothesis(ctx, p, target, hyp); err != nil {
		return err
	}

	s.turn++
	s.current = (s.current + 1) % len(s.players)
	return nil
}

// resolveMovement validates the adjacency set, asks the policy for a room,
// and applies the move atomically through the store.
func (s *Session) resolveMovement(ctx context.Context, p Player, policy Policy) (Card, error) {
	current, err := s.store.CurrentRoom(ctx, p.Name)
	if err != nil {
		return Card{}, fmt.Errorf("fetching current room of %s: %w", p.Name, err)
	}
	s.prompter.Notify(fmt.Sprintf("It is %s's turn (%s), currently in %s.", p.Name, p.Mode, current.Name))

	adjacent, err := s.store.AdjacentRooms(ctx, current)
	if err != nil {
		return Card{}, fmt.Errorf("fetching rooms adjacent to %s: %w", current.Name, err)
	}
	if len(adjacent) == 0 {
		return Card{}, fmt.Errorf("%w: %s", ErrEmptyAdjacency, current.Name)
	}

	newRoom, err := policy.ChooseRoom(ctx, p, current, adjacent)
	if err != nil {
		return Card{}, err
	}
	if !containsCard(adjacent, newRoom) {
		return Card{}, fmt.Errorf("%w: %s from %s", ErrInvalidRoom, newRoom.Name, current.Name)
	}

	if err := s.store.SetCurrentRoom(ctx, p.Name, newRoom); err != nil {
		return Card{}, fmt.Errorf("moving %s to %s: %w", p.Name, newRoom.Name, err)
	}
	s.prompter.Notify(fmt.Sprintf("%s moves to %s.", p.Name, newRoom.Name))
	s.emit(Event{Type: EventMoved, Player: p.Name, Room: &newRoom})
	return newRoom, nil
}

// formHypothesis collects the weapon and character picks and binds the room.
func (s *Session) formHypothesis(ctx context.Context, p Player, policy Policy, room Card) (Hypothesis, error) {
	weapons, err := s.store.AllCards(ctx, CategoryWeapon)
	if err != nil {
		return Hypothesis{}, err
	}
	characters, err := s.store.AllCards(ctx, CategoryCharacter)
	if err != nil {
		return Hypothesis{}, err
	}

	weapon, err := policy.ChooseWeapon(ctx, p, weapons)
	if err != nil {
		return Hypothesis{}, err
	}
	character, err := policy.ChooseCharacter(ctx, p, characters)
	if err != nil {
		return Hypothesis{}, err
	}

	hyp := Hypothesis{Character: character, Weapon: weapon, Room: room}
	s.prompter.Notify(fmt.Sprintf("%s suggests that %s used %s in %s.",
		p.Name, character.Name, weapon.Name, room.Name))
	s.emit(Event{Type: EventHypothesisMade, Player: p.Name, Hypothesis: &hyp})
	return hyp, nil
}

// chooseTarget builds the stable ordered list of other players and delegates.
func (s *Session) chooseTarget(ctx context.Context, p Player, policy Policy) (Player, error) {
	others := make([]Player, 0, len(s.players)-1)
	for _, o := range s.players {
		if o.Name != p.Name {
			others = append(others, o)
		}
	}
	return policy.ChooseTarget(ctx, p, others)
}

// SubmitAccusation forwards an accusation to the installed checker. It is the
// extension point for a future win condition; no code path in the turn loop
// calls it.
func (s *Session) SubmitAccusation(ctx context.Context, accuser Player, a Accusation) (bool, error) {
	if s.Checker == nil {
		return false, ErrNoChecker
	}
	return s.Checker.Check(ctx, accuser, a)
}

func containsCard(cards []Card, c Card) bool {
	for _, x := range cards {
		if x.Name == c.Name {
			return true
		}
	}
	return false
}
