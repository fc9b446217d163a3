package engine

// Category identifies one of the three disjoint card families.
type Category uint8

const (
	CategoryCharacter Category = iota // 0
	CategoryWeapon                    // 1
	CategoryRoom                      // 2
)

// Categories lists all card categories in display order.
var Categories = [3]Category{CategoryCharacter, CategoryWeapon, CategoryRoom}

func (c Category) String() string {
	switch c {
	case CategoryCharacter:
		return "character"
	case CategoryWeapon:
		return "weapon"
	case CategoryRoom:
		return "room"
	}
	return "unknown"
}

// Card is one element of the fixed game universe. Names are unique across
// all three categories, so a Card is fully identified by its Name; the
// Category tag is carried so callers never need a reverse lookup.
type Card struct {
	Category Category
	Name     string
}

// Mode distinguishes interactive players from automated ones.
type Mode uint8

const (
	ModeHuman Mode = iota // 0
	ModeBot               // 1
)

func (m Mode) String() string {
	if m == ModeBot {
		return "bot"
	}
	return "human"
}

// Player is a participant in one game session. Players are created at setup
// and never destroyed; only their current room changes during play, and that
// association lives in the Store, not here.
type Player struct {
	Name      string
	Mode      Mode
	Character Card // the embodied character card
}

// Polarity is the sign of a recorded belief.
type Polarity uint8

const (
	Possesses      Polarity = iota // 0
	DoesNotPossess                 // 1
)

func (p Polarity) String() string {
	if p == DoesNotPossess {
		return "does_not_possess"
	}
	return "possesses"
}

// Belief is a directed, attributed assertion: Owner believes that Subject
// does (or does not) hold Card. Source names the player whose action produced
// the evidence; it equals Subject for direct reveals and negative answers.
// Beliefs accumulate monotonically — nothing ever retracts one.
type Belief struct {
	Owner    string
	Subject  string
	Card     Card
	Polarity Polarity
	Source   string
}

// Hypothesis is the ephemeral (character, weapon, room) triple a player poses
// during their turn. The room is always the proposer's room after movement.
type Hypothesis struct {
	Character Card
	Weapon    Card
	Room      Card
}

// Key returns the canonical identity of a hypothesis, used for bot memory.
func (h Hypothesis) Key() string {
	return h.Character.Name + "\x00" + h.Weapon.Name + "\x00" + h.Room.Name
}

// Accusation is a final (character, weapon, room) guess against the hidden
// solution. The turn loop never produces one; it exists so a front end can
// plug an accusation rule in via Session.Checker without touching the rest
// of the turn contract.
type Accusation struct {
	Character Card
	Weapon    Card
	Room      Card
}

// TurnPhase enumerates the fixed four-step cycle of a single turn.
type TurnPhase uint8

const (
	PhaseAwaitMove       TurnPhase = iota // 0
	PhaseAwaitHypothesis                  // 1
	PhaseAwaitTarget                      // 2
	PhaseAwaitResolution                  // 3
)

func (p TurnPhase) String() string {
	switch p {
	case PhaseAwaitMove:
		return "await_move"
	case PhaseAwaitHypothesis:
		return "await_hypothesis"
	case PhaseAwaitTarget:
		return "await_target"
	case PhaseAwaitResolution:
		return "await_resolution"
	}
	return "unknown"
}
