package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lhoussin/limier/engine"
)

// Node kinds.
const (
	kindPlayer = "player"
	kindCard   = "card"
)

// Edge relations. The names are the stored vocabulary; renaming one breaks
// replay of persisted sessions.
const (
	relLocatedIn   = "est_dans"
	relHasAccess   = "a_acces"
	relPossesses   = "possede"
	relBelievesHas = "pense_que_possede"
	relBelievesNot = "pense_que_ne_possede_pas"
)

// ErrNotFound is returned when a named node is missing from the session.
var ErrNotFound = errors.New("database: not found")

// GraphStore implements engine.Store on the Postgres graph tables, scoped to
// one session. Belief ledgers are append-only edge inserts; nothing is ever
// updated in place except the single location edge, which SetCurrentRoom
// replaces in a transaction.
type GraphStore struct {
	db      *pgxpool.Pool
	session uuid.UUID
}

var _ engine.Store = (*GraphStore)(nil)

// NewGraphStore returns a store for the given session id.
func NewGraphStore(db *pgxpool.Pool, session uuid.UUID) *GraphStore {
	return &GraphStore{db: db, session: session}
}

// Session returns the session id this store is scoped to.
func (s *GraphStore) Session() uuid.UUID { return s.session }

func (s *GraphStore) nodeID(ctx context.Context, kind, name string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		`SELECT id FROM game_nodes WHERE session_id = $1 AND kind = $2 AND name = $3`,
		s.session, kind, name,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
	}
	return id, err
}

// AddCard registers one card node.
func (s *GraphStore) AddCard(ctx context.Context, c engine.Card) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO game_nodes (session_id, kind, name, category)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id, kind, name) DO NOTHING`,
		s.session, kindCard, c.Name, c.Category.String(),
	)
	return err
}

// AddPlayer registers a player node and its starting location edge.
func (s *GraphStore) AddPlayer(ctx context.Context, p engine.Player, startRoom engine.Card) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var playerID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO game_nodes (session_id, kind, name, player_mode, character_name)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		s.session, kindPlayer, p.Name, p.Mode.String(), p.Character.Name,
	).Scan(&playerID)
	if err != nil {
		return fmt.Errorf("inserting player %s: %w", p.Name, err)
	}

	var roomID int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM game_nodes WHERE session_id = $1 AND kind = $2 AND name = $3`,
		s.session, kindCard, startRoom.Name,
	).Scan(&roomID)
	if err != nil {
		return fmt.Errorf("resolving start room %s: %w", startRoom.Name, err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO game_edges (session_id, from_id, to_id, relation)
		 VALUES ($1, $2, $3, $4)`,
		s.session, playerID, roomID, relLocatedIn,
	)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AddAccess registers one directed room adjacency edge.
func (s *GraphStore) AddAccess(ctx context.Context, from, to engine.Card) error {
	fromID, err := s.nodeID(ctx, kindCard, from.Name)
	if err != nil {
		return err
	}
	toID, err := s.nodeID(ctx, kindCard, to.Name)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO game_edges (session_id, from_id, to_id, relation)
		 VALUES ($1, $2, $3, $4)`,
		s.session, fromID, toID, relHasAccess,
	)
	return err
}

// AddPossession deals one card to a player.
func (s *GraphStore) AddPossession(ctx context.Context, player string, c engine.Card) error {
	playerID, err := s.nodeID(ctx, kindPlayer, player)
	if err != nil {
		return err
	}
	cardID, err := s.nodeID(ctx, kindCard, c.Name)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO game_edges (session_id, from_id, to_id, relation)
		 VALUES ($1, $2, $3, $4)`,
		s.session, playerID, cardID, relPossesses,
	)
	return err
}

func (s *GraphStore) Players(ctx context.Context) ([]engine.Player, error) {
	rows, err := s.db.Query(ctx,
		`SELECT name, player_mode, character_name
		 FROM game_nodes
		 WHERE session_id = $1 AND kind = $2
		 ORDER BY id`,
		s.session, kindPlayer,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []engine.Player
	for rows.Next() {
		var name, mode, character string
		if err := rows.Scan(&name, &mode, &character); err != nil {
			return nil, err
		}
		p := engine.Player{Name: name}
		if mode == engine.ModeBot.String() {
			p.Mode = engine.ModeBot
		}
		if ch, ok := engine.CharacterCard(character); ok {
			p.Character = ch
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *GraphStore) CurrentRoom(ctx context.Context, player string) (engine.Card, error) {
	var name string
	err := s.db.QueryRow(ctx,
		`SELECT room.name
		 FROM game_edges e
		 JOIN game_nodes p ON p.id = e.from_id
		 JOIN game_nodes room ON room.id = e.to_id
		 WHERE e.session_id = $1 AND e.relation = $2 AND p.kind = $3 AND p.name = $4`,
		s.session, relLocatedIn, kindPlayer, player,
	).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return engine.Card{}, fmt.Errorf("%w: location of %q", ErrNotFound, player)
	}
	if err != nil {
		return engine.Card{}, err
	}
	room, ok := engine.RoomCard(name)
	if !ok {
		return engine.Card{}, fmt.Errorf("stored location %q is not a room", name)
	}
	return room, nil
}

// SetCurrentRoom replaces the player's single location edge atomically.
func (s *GraphStore) SetCurrentRoom(ctx context.Context, player string, room engine.Card) error {
	playerID, err := s.nodeID(ctx, kindPlayer, player)
	if err != nil {
		return err
	}
	roomID, err := s.nodeID(ctx, kindCard, room.Name)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`DELETE FROM game_edges
		 WHERE session_id = $1 AND relation = $2 AND from_id = $3`,
		s.session, relLocatedIn, playerID,
	)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO game_edges (session_id, from_id, to_id, relation)
		 VALUES ($1, $2, $3, $4)`,
		s.session, playerID, roomID, relLocatedIn,
	)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *GraphStore) AdjacentRooms(ctx context.Context, room engine.Card) ([]engine.Card, error) {
	rows, err := s.db.Query(ctx,
		`SELECT dest.name
		 FROM game_edges e
		 JOIN game_nodes src ON src.id = e.from_id
		 JOIN game_nodes dest ON dest.id = e.to_id
		 WHERE e.session_id = $1 AND e.relation = $2 AND src.name = $3
		 ORDER BY e.id`,
		s.session, relHasAccess, room.Name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Card
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if c, ok := engine.RoomCard(name); ok {
			out = append(out, c)
		}
	}
	return out, rows.Err()
}

func (s *GraphStore) Possesses(ctx context.Context, player string, c engine.Card) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM game_edges e
			JOIN game_nodes p ON p.id = e.from_id
			JOIN game_nodes card ON card.id = e.to_id
			WHERE e.session_id = $1 AND e.relation = $2
			  AND p.name = $3 AND card.name = $4
		 )`,
		s.session, relPossesses, player, c.Name,
	).Scan(&exists)
	return exists, err
}

func (s *GraphStore) PlayerCards(ctx context.Context, player string) ([]engine.Card, error) {
	rows, err := s.db.Query(ctx,
		`SELECT card.name, card.category
		 FROM game_edges e
		 JOIN game_nodes p ON p.id = e.from_id
		 JOIN game_nodes card ON card.id = e.to_id
		 WHERE e.session_id = $1 AND e.relation = $2 AND p.name = $3
		 ORDER BY e.id`,
		s.session, relPossesses, player,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCards(rows)
}

// RecordBelief appends one belief edge from the owner to the card. The
// subject and attributed source live on the edge.
func (s *GraphStore) RecordBelief(ctx context.Context, b engine.Belief) error {
	ownerID, err := s.nodeID(ctx, kindPlayer, b.Owner)
	if err != nil {
		return err
	}
	cardID, err := s.nodeID(ctx, kindCard, b.Card.Name)
	if err != nil {
		return err
	}
	relation := relBelievesHas
	if b.Polarity == engine.DoesNotPossess {
		relation = relBelievesNot
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO game_edges (session_id, from_id, to_id, relation, subject, source)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.session, ownerID, cardID, relation, b.Subject, b.Source,
	)
	return err
}

func (s *GraphStore) QueryBeliefs(ctx context.Context, owner, subject string, cat engine.Category) (map[string]engine.Polarity, error) {
	rows, err := s.db.Query(ctx,
		`SELECT card.name, bool_or(e.relation = $5)
		 FROM game_edges e
		 JOIN game_nodes p ON p.id = e.from_id
		 JOIN game_nodes card ON card.id = e.to_id
		 WHERE e.session_id = $1 AND e.relation IN ($5, $6)
		   AND p.name = $2 AND e.subject = $3 AND card.category = $4
		 GROUP BY card.name`,
		s.session, owner, subject, cat.String(), relBelievesHas, relBelievesNot,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]engine.Polarity)
	for rows.Next() {
		var name string
		var positive bool
		if err := rows.Scan(&name, &positive); err != nil {
			return nil, err
		}
		// Positive wins when both polarities were ever recorded.
		pol := engine.DoesNotPossess
		if positive {
			pol = engine.Possesses
		}
		out[name] = pol
	}
	return out, rows.Err()
}

func (s *GraphStore) PositiveBeliefs(ctx context.Context, owner string) ([]engine.Card, error) {
	rows, err := s.db.Query(ctx,
		`SELECT card.name, card.category
		 FROM game_edges e
		 JOIN game_nodes p ON p.id = e.from_id
		 JOIN game_nodes card ON card.id = e.to_id
		 WHERE e.session_id = $1 AND e.relation = $2 AND p.name = $3
		 GROUP BY card.name, card.category
		 ORDER BY min(e.id)`,
		s.session, relBelievesHas, owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCards(rows)
}

func (s *GraphStore) AllCards(ctx context.Context, cat engine.Category) ([]engine.Card, error) {
	rows, err := s.db.Query(ctx,
		`SELECT name, category FROM game_nodes
		 WHERE session_id = $1 AND kind = $2 AND category = $3
		 ORDER BY id`,
		s.session, kindCard, cat.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCards(rows)
}

func scanCards(rows pgx.Rows) ([]engine.Card, error) {
	var out []engine.Card
	for rows.Next() {
		var name, category string
		if err := rows.Scan(&name, &category); err != nil {
			return nil, err
		}
		out = append(out, engine.Card{Category: categoryFromString(category), Name: name})
	}
	return out, rows.Err()
}

func categoryFromString(s string) engine.Category {
	for _, cat := range engine.Categories {
		if cat.String() == s {
			return cat
		}
	}
	return engine.Category(0)
}
