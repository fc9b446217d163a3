package engine

import "context"

// Store is the storage collaborator: the graph-shaped repository holding
// player locations, card possession ground truth, and the belief ledgers.
// The engine never repairs partial state on failure — errors from the Store
// propagate unmodified and abort the current session, relying on the
// backend's own transactional guarantees.
//
// All sequence-returning methods must use a stable order (setup order for
// players, fixed registry order for cards, edge insertion order for
// adjacency) so that choice menus and bot sampling are reproducible.
type Store interface {
	// Players returns every participant in setup order.
	Players(ctx context.Context) ([]Player, error)

	// CurrentRoom returns the single room the player occupies.
	CurrentRoom(ctx context.Context, player string) (Card, error)

	// SetCurrentRoom atomically replaces the player's location edge.
	SetCurrentRoom(ctx context.Context, player string, room Card) error

	// AdjacentRooms returns the rooms reachable from room via one outgoing
	// edge. Directionality matters; the reverse edge may not exist.
	AdjacentRooms(ctx context.Context, room Card) ([]Card, error)

	// Possesses reports the ground truth of player physically holding card.
	Possesses(ctx context.Context, player string, card Card) (bool, error)

	// PlayerCards returns every card the player physically holds.
	PlayerCards(ctx context.Context, player string) ([]Card, error)

	// RecordBelief appends one belief to the owner's ledger. Ledgers are
	// append-only; recording never overwrites or removes an entry.
	RecordBelief(ctx context.Context, b Belief) error

	// QueryBeliefs returns, for one (owner, subject) pair and category, the
	// polarity the owner has recorded per card name. When both polarities
	// were ever recorded for a card, the positive one wins the rendering.
	QueryBeliefs(ctx context.Context, owner, subject string, cat Category) (map[string]Polarity, error)

	// PositiveBeliefs returns the distinct cards for which the owner holds at
	// least one possession belief, about any subject. This backs the bot
	// hypothesis filter and the information-minimizing reveal preference.
	PositiveBeliefs(ctx context.Context, owner string) ([]Card, error)

	// AllCards returns the fixed universe for one category.
	AllCards(ctx context.Context, cat Category) ([]Card, error)
}
