package engine

import "errors"

var (
	// ErrEmptyAdjacency reports a room with no outgoing access edge. The
	// board topology must guarantee that every room leads somewhere, so this
	// is a setup-invariant violation and fatal for the session.
	ErrEmptyAdjacency = errors.New("room has no outgoing access")

	// ErrNoPlayers reports a session started over a store with no players.
	ErrNoPlayers = errors.New("no players in session")

	// ErrNoPolicy reports a player for whom no decision policy was supplied.
	ErrNoPolicy = errors.New("no policy for player")

	// ErrInvalidRoom reports a movement choice outside the adjacent set.
	// Interactive prompters recover invalid input locally, so seeing this
	// means a policy is broken, not that a user mistyped.
	ErrInvalidRoom = errors.New("chosen room is not adjacent to current room")

	// ErrUnknownPlayer reports a lookup for a player the store does not know.
	ErrUnknownPlayer = errors.New("unknown player")

	// ErrNoChecker reports an accusation submitted while no AccusationChecker
	// is installed on the session.
	ErrNoChecker = errors.New("no accusation checker installed")
)
