package engine

import (
	"context"
	"errors"
	"testing"
)

// nopPrompter satisfies Prompter for tests that never reach interactive input.
type nopPrompter struct {
	notices []string
	pauses  int
}

func (n *nopPrompter) Choose(context.Context, string, []string) (int, error) { return 0, nil }

func (n *nopPrompter) Notify(msg string) { n.notices = append(n.notices, msg) }

func (n *nopPrompter) Pause(context.Context) error { n.pauses++; return nil }

func (n *nopPrompter) ShowCards(string, []Card) {}

func (n *nopPrompter) ShowNotebook(*Notebook) {}

// stubPolicy returns fixed decisions, recording reveal candidates it was
// offered.
type stubPolicy struct {
	room      string
	weapon    string
	character string
	target    string

	revealOffers [][]Card
}

func pickByName(cards []Card, name string) (Card, error) {
	for _, c := range cards {
		if c.Name == name {
			return c, nil
		}
	}
	return Card{}, errors.New("stub: card not offered: " + name)
}

func (s *stubPolicy) ChooseRoom(_ context.Context, _ Player, _ Card, adjacent []Card) (Card, error) {
	return pickByName(adjacent, s.room)
}

func (s *stubPolicy) ChooseWeapon(_ context.Context, _ Player, weapons []Card) (Card, error) {
	return pickByName(weapons, s.weapon)
}

func (s *stubPolicy) ChooseCharacter(_ context.Context, _ Player, characters []Card) (Card, error) {
	return pickByName(characters, s.character)
}

func (s *stubPolicy) ChooseTarget(_ context.Context, _ Player, others []Player) (Player, error) {
	for _, o := range others {
		if o.Name == s.target {
			return o, nil
		}
	}
	return Player{}, errors.New("stub: target not offered: " + s.target)
}

func (s *stubPolicy) ChooseReveal(_ context.Context, _ Player, candidates []Card) (Card, error) {
	s.revealOffers = append(s.revealOffers, candidates)
	return candidates[0], nil
}

// newTestGame seeds a three-player game: Alice (human), Bot 1 and Bot 2
// (bots), everyone starting in the Cafétéria. Possession is left to each
// test.
func newTestGame(t *testing.T) (*MemoryStore, map[string]*stubPolicy, *Session, *nopPrompter) {
	t.Helper()
	ctx := context.Background()
	st := NewMemoryStore()
	seedBoard(t, st)

	names := []struct {
		name      string
		mode      Mode
		character string
	}{
		{"Alice", ModeHuman, "Mr. Adam"},
		{"Bot 1", ModeBot, "Mr. Godin"},
		{"Bot 2", ModeBot, "Mr. Kerbellec"},
	}
	stubs := make(map[string]*stubPolicy)
	policies := make(map[string]Policy)
	for _, n := range names {
		ch, _ := CharacterCard(n.character)
		if err := st.AddPlayer(ctx, Player{Name: n.name, Mode: n.mode, Character: ch}, StartRoom()); err != nil {
			t.Fatalf("AddPlayer(%s): %v", n.name, err)
		}
		stub := &stubPolicy{}
		stubs[n.name] = stub
		policies[n.name] = stub
	}

	pr := &nopPrompter{}
	sess := NewSession(st, pr, policies)
	sess.SkipPause = true
	return st, stubs, sess, pr
}

func possess(t *testing.T, st *MemoryStore, player string, cards ...Card) {
	t.Helper()
	for _, c := range cards {
		if err := st.AddPossession(context.Background(), player, c); err != nil {
			t.Fatalf("AddPossession(%s, %s): %v", player, c.Name, err)
		}
	}
}

func mustCard(t *testing.T, cat Category, name string) Card {
	t.Helper()
	c, ok := findCard(cat, name)
	if !ok {
		t.Fatalf("card %q not in %s registry", name, cat)
	}
	return c
}

// TestPlayTurnFullCycle verifies one complete turn: legal move applied,
// hypothesis formed weapon-then-character, target questioned, reveal
// resolved, round-robin advanced.
func TestPlayTurnFullCycle(t *testing.T) {
	ctx := context.Background()
	st, stubs, sess, _ := newTestGame(t)

	velleda := mustCard(t, CategoryWeapon, "Velleda")
	possess(t, st, "Bot 1", velleda)

	stubs["Alice"].room = "Secrétariat"
	stubs["Alice"].weapon = "Velleda"
	stubs["Alice"].character = "Mr. Pham"
	stubs["Alice"].target = "Bot 1"

	var events []Event
	sess.Events = func(ev Event) { events = append(events, ev) }

	if err := sess.PlayTurn(ctx); err != nil {
		t.Fatalf("PlayTurn: %v", err)
	}

	room, _ := st.CurrentRoom(ctx, "Alice")
	if room.Name != "Secrétariat" {
		t.Errorf("Alice in %s after move, want Secrétariat", room.Name)
	}

	if sess.Turn() != 1 {
		t.Errorf("Turn() = %d, want 1", sess.Turn())
	}
	if sess.current != 1 {
		t.Errorf("round-robin index = %d, want 1", sess.current)
	}

	// Bot 1 held the weapon, so exactly one positive belief for Alice.
	weapons, _ := st.QueryBeliefs(ctx, "Alice", "Bot 1", CategoryWeapon)
	if pol, ok := weapons["Velleda"]; !ok || pol != Possesses {
		t.Errorf("Alice's weapon view of Bot 1 = %v, want Velleda possessed", weapons)
	}

	wantTypes := []EventType{EventTurnStarted, EventMoved, EventHypothesisMade, EventPlayerQuestioned, EventCardRevealed}
	if len(events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d: %v", len(events), len(wantTypes), events)
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Errorf("event[%d].Type = %s, want %s", i, events[i].Type, want)
		}
	}
}

// TestMovementNeverTeleports verifies each applied move follows exactly one
// outgoing access edge from the previous room.
func TestMovementNeverTeleports(t *testing.T) {
	ctx := context.Background()
	st, stubs, sess, _ := newTestGame(t)

	// Walk Alice Cafétéria → RU → Amphi B across turns; bots hop in place
	// between Cafétéria and Secrétariat.
	aliceRooms := []string{"RU", "Amphi B", "Cafétéria"}
	for _, s := range stubs {
		s.weapon = "DDOS"
		s.character = "Mr. Baudon"
	}
	stubs["Alice"].target = "Bot 1"
	stubs["Bot 1"].target = "Bot 2"
	stubs["Bot 2"].target = "Alice"
	stubs["Bot 1"].room = "Secrétariat"
	stubs["Bot 2"].room = "Secrétariat"

	for turn := 0; turn < 9; turn++ {
		name := []string{"Alice", "Bot 1", "Bot 2"}[turn%3]
		if name == "Alice" {
			stubs["Alice"].room = aliceRooms[turn/3]
		} else if turn >= 3 {
			// Bots left Cafétéria on their first turn; from Secrétariat they
			// can reach the Cafétéria again.
			stubs[name].room = "Cafétéria"
			if turn >= 6 {
				stubs[name].room = "Secrétariat"
			}
		}

		before, _ := st.CurrentRoom(ctx, name)
		if err := sess.PlayTurn(ctx); err != nil {
			t.Fatalf("turn %d (%s): %v", turn, name, err)
		}
		after, _ := st.CurrentRoom(ctx, name)

		adj, _ := st.AdjacentRooms(ctx, before)
		if !containsCard(adj, after) {
			t.Fatalf("turn %d: %s teleported %s → %s", turn, name, before.Name, after.Name)
		}
	}
}

// TestMovementRejectsNonAdjacent verifies an out-of-set policy choice is a
// structural error, not a silent teleport.
func TestMovementRejectsNonAdjacent(t *testing.T) {
	_, stubs, sess, _ := newTestGame(t)

	// Amphi C is not reachable from the Cafétéria.
	stubs["Alice"].room = "Amphi C"

	err := sess.PlayTurn(context.Background())
	if err == nil {
		t.Fatal("PlayTurn accepted a non-adjacent room")
	}
}

// TestEmptyAdjacencyIsFatal verifies a dead-end room aborts the session with
// ErrEmptyAdjacency.
func TestEmptyAdjacencyIsFatal(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	// Rooms registered but no access edges at all.
	for _, cat := range Categories {
		for _, c := range AllCards(cat) {
			if err := st.AddCard(ctx, c); err != nil {
				t.Fatalf("AddCard: %v", err)
			}
		}
	}
	if err := st.AddPlayer(ctx, Player{Name: "Alice", Mode: ModeHuman}, StartRoom()); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	sess := NewSession(st, &nopPrompter{}, map[string]Policy{"Alice": &stubPolicy{}})
	sess.SkipPause = true

	if err := sess.PlayTurn(ctx); !errors.Is(err, ErrEmptyAdjacency) {
		t.Errorf("PlayTurn error = %v, want ErrEmptyAdjacency", err)
	}
}

// TestRevealSingleCandidate: the target holds the hypothesized character but
// not the weapon, so exactly that card is revealed.
func TestRevealSingleCandidate(t *testing.T) {
	ctx := context.Background()
	st, _, sess, _ := newTestGame(t)

	pham := mustCard(t, CategoryCharacter, "Mr. Pham")
	possess(t, st, "Bot 1", pham)

	if err := sess.loadPlayers(ctx); err != nil {
		t.Fatalf("loadPlayers: %v", err)
	}
	alice, bot1 := sess.players[0], sess.players[1]
	hyp := Hypothesis{
		Character: pham,
		Weapon:    mustCard(t, CategoryWeapon, "Velleda"),
		Room:      StartRoom(),
	}

	res, err := sess.resolveHypothesis(ctx, alice, bot1, hyp)
	if err != nil {
		t.Fatalf("resolveHypothesis: %v", err)
	}
	if res.Repeated || res.Revealed == nil {
		t.Fatalf("Resolution = %+v, want one revealed card", res)
	}
	if res.Revealed.Name != "Mr. Pham" {
		t.Errorf("revealed %s, want Mr. Pham", res.Revealed.Name)
	}

	chars, _ := st.QueryBeliefs(ctx, "Alice", "Bot 1", CategoryCharacter)
	if pol, ok := chars["Mr. Pham"]; !ok || pol != Possesses {
		t.Errorf("Alice's character view = %v, want Mr. Pham possessed", chars)
	}
}

// TestRevealBothCandidatesOrdered: when the target holds both cards the
// choice set is [character, weapon] in that order and exactly one card is
// revealed.
func TestRevealBothCandidatesOrdered(t *testing.T) {
	ctx := context.Background()
	st, stubs, sess, _ := newTestGame(t)

	pham := mustCard(t, CategoryCharacter, "Mr. Pham")
	velleda := mustCard(t, CategoryWeapon, "Velleda")
	possess(t, st, "Alice", pham, velleda)

	if err := sess.loadPlayers(ctx); err != nil {
		t.Fatalf("loadPlayers: %v", err)
	}
	alice, bot1 := sess.players[0], sess.players[1]
	hyp := Hypothesis{Character: pham, Weapon: velleda, Room: StartRoom()}

	before := st.BeliefCount()
	res, err := sess.resolveHypothesis(ctx, bot1, alice, hyp)
	if err != nil {
		t.Fatalf("resolveHypothesis: %v", err)
	}
	if res.Revealed == nil {
		t.Fatal("no card revealed despite two candidates")
	}

	offers := stubs["Alice"].revealOffers
	if len(offers) != 1 {
		t.Fatalf("ChooseReveal called %d times, want 1", len(offers))
	}
	if len(offers[0]) != 2 || offers[0][0].Name != "Mr. Pham" || offers[0][1].Name != "Velleda" {
		t.Errorf("candidates = %v, want [Mr. Pham, Velleda]", offers[0])
	}

	// Exactly one positive belief recorded (human target: no self-attribution).
	if got := st.BeliefCount() - before; got != 1 {
		t.Errorf("ledger grew by %d, want 1", got)
	}
}

// TestNoRevealRecordsTripleNegative: an empty candidate set records negative
// beliefs for character, weapon AND room — the room one despite never being
// possession-checked. The quirk is deliberate and preserved.
func TestNoRevealRecordsTripleNegative(t *testing.T) {
	ctx := context.Background()
	st, _, sess, _ := newTestGame(t)

	if err := sess.loadPlayers(ctx); err != nil {
		t.Fatalf("loadPlayers: %v", err)
	}
	alice, bot1 := sess.players[0], sess.players[1]
	hyp := Hypothesis{
		Character: mustCard(t, CategoryCharacter, "Mr. Pham"),
		Weapon:    mustCard(t, CategoryWeapon, "Velleda"),
		Room:      mustCard(t, CategoryRoom, "RU"),
	}

	before := st.BeliefCount()
	res, err := sess.resolveHypothesis(ctx, alice, bot1, hyp)
	if err != nil {
		t.Fatalf("resolveHypothesis: %v", err)
	}
	if res.Revealed != nil || res.Repeated {
		t.Fatalf("Resolution = %+v, want plain no-reveal", res)
	}
	if got := st.BeliefCount() - before; got != 3 {
		t.Errorf("ledger grew by %d, want exactly 3 negatives", got)
	}

	for _, check := range []struct {
		cat  Category
		name string
	}{
		{CategoryCharacter, "Mr. Pham"},
		{CategoryWeapon, "Velleda"},
		{CategoryRoom, "RU"},
	} {
		view, _ := st.QueryBeliefs(ctx, "Alice", "Bot 1", check.cat)
		if pol, ok := view[check.name]; !ok || pol != DoesNotPossess {
			t.Errorf("%s view = %v, want %s marked not possessed", check.cat, view, check.name)
		}
	}
}

// TestRepeatHypothesisIsNoOp: asking a bot the identical hypothesis twice
// leaves the ledger untouched the second time and reveals nothing.
func TestRepeatHypothesisIsNoOp(t *testing.T) {
	ctx := context.Background()
	st, _, sess, _ := newTestGame(t)

	pham := mustCard(t, CategoryCharacter, "Mr. Pham")
	possess(t, st, "Bot 1", pham)

	if err := sess.loadPlayers(ctx); err != nil {
		t.Fatalf("loadPlayers: %v", err)
	}
	alice, bot1 := sess.players[0], sess.players[1]
	hyp := Hypothesis{
		Character: pham,
		Weapon:    mustCard(t, CategoryWeapon, "Velleda"),
		Room:      StartRoom(),
	}

	first, err := sess.resolveHypothesis(ctx, alice, bot1, hyp)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if first.Revealed == nil {
		t.Fatal("first ask should reveal Mr. Pham")
	}

	before := st.BeliefCount()
	second, err := sess.resolveHypothesis(ctx, alice, bot1, hyp)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if !second.Repeated || second.Revealed != nil {
		t.Errorf("second Resolution = %+v, want repeat no-op", second)
	}
	if got := st.BeliefCount(); got != before {
		t.Errorf("ledger grew on repeated hypothesis: %d → %d", before, got)
	}
}

// TestRepeatGuardRecordsNoRevealToo: the memory key is recorded before
// resolution, so even a no-reveal answer is never processed twice.
func TestRepeatGuardRecordsNoRevealToo(t *testing.T) {
	ctx := context.Background()
	st, _, sess, _ := newTestGame(t)

	if err := sess.loadPlayers(ctx); err != nil {
		t.Fatalf("loadPlayers: %v", err)
	}
	alice, bot1 := sess.players[0], sess.players[1]
	hyp := Hypothesis{
		Character: mustCard(t, CategoryCharacter, "Mr. Pham"),
		Weapon:    mustCard(t, CategoryWeapon, "Velleda"),
		Room:      StartRoom(),
	}

	if _, err := sess.resolveHypothesis(ctx, alice, bot1, hyp); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	before := st.BeliefCount()
	res, err := sess.resolveHypothesis(ctx, alice, bot1, hyp)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if !res.Repeated {
		t.Error("second identical no-reveal hypothesis was reprocessed")
	}
	if st.BeliefCount() != before {
		t.Error("repeated no-reveal hypothesis duplicated the negative beliefs")
	}
}

// TestBotMemoryScopedPerBot: the same hypothesis against a different bot is
// not short-circuited.
func TestBotMemoryScopedPerBot(t *testing.T) {
	ctx := context.Background()
	_, _, sess, _ := newTestGame(t)

	if err := sess.loadPlayers(ctx); err != nil {
		t.Fatalf("loadPlayers: %v", err)
	}
	alice, bot1, bot2 := sess.players[0], sess.players[1], sess.players[2]
	hyp := Hypothesis{
		Character: mustCard(t, CategoryCharacter, "Mr. Pham"),
		Weapon:    mustCard(t, CategoryWeapon, "Velleda"),
		Room:      StartRoom(),
	}

	if _, err := sess.resolveHypothesis(ctx, alice, bot1, hyp); err != nil {
		t.Fatalf("resolve vs Bot 1: %v", err)
	}
	res, err := sess.resolveHypothesis(ctx, alice, bot2, hyp)
	if err != nil {
		t.Fatalf("resolve vs Bot 2: %v", err)
	}
	if res.Repeated {
		t.Error("Bot 2 short-circuited on a hypothesis only Bot 1 was asked")
	}
}

// TestBotRevealSelfAttributes: a bot reveal records the bot's own
// self-attributed possession belief alongside the questioner's.
func TestBotRevealSelfAttributes(t *testing.T) {
	ctx := context.Background()
	st, _, sess, _ := newTestGame(t)

	pham := mustCard(t, CategoryCharacter, "Mr. Pham")
	possess(t, st, "Bot 1", pham)

	if err := sess.loadPlayers(ctx); err != nil {
		t.Fatalf("loadPlayers: %v", err)
	}
	alice, bot1 := sess.players[0], sess.players[1]
	hyp := Hypothesis{
		Character: pham,
		Weapon:    mustCard(t, CategoryWeapon, "Velleda"),
		Room:      StartRoom(),
	}

	if _, err := sess.resolveHypothesis(ctx, alice, bot1, hyp); err != nil {
		t.Fatalf("resolveHypothesis: %v", err)
	}

	own, err := st.PositiveBeliefs(ctx, "Bot 1")
	if err != nil {
		t.Fatalf("PositiveBeliefs: %v", err)
	}
	if len(own) != 1 || own[0].Name != "Mr. Pham" {
		t.Errorf("Bot 1 self-attributed beliefs = %v, want [Mr. Pham]", own)
	}
}

// TestOnlyQuestionerLedgerWritten: resolution never writes a third player's
// ledger.
func TestOnlyQuestionerLedgerWritten(t *testing.T) {
	ctx := context.Background()
	st, _, sess, _ := newTestGame(t)

	if err := sess.loadPlayers(ctx); err != nil {
		t.Fatalf("loadPlayers: %v", err)
	}
	alice, bot1 := sess.players[0], sess.players[1]
	hyp := Hypothesis{
		Character: mustCard(t, CategoryCharacter, "Mr. Pham"),
		Weapon:    mustCard(t, CategoryWeapon, "Velleda"),
		Room:      StartRoom(),
	}

	if _, err := sess.resolveHypothesis(ctx, alice, bot1, hyp); err != nil {
		t.Fatalf("resolveHypothesis: %v", err)
	}

	for _, owner := range []string{"Bot 1", "Bot 2"} {
		for _, cat := range Categories {
			view, _ := st.QueryBeliefs(ctx, owner, "Bot 1", cat)
			if len(view) != 0 {
				t.Errorf("%s's ledger gained entries on Alice's question: %v", owner, view)
			}
		}
	}
}

// TestRunHonorsCancellation verifies Run exits with the context error.
func TestRunHonorsCancellation(t *testing.T) {
	_, stubs, sess, _ := newTestGame(t)

	for name, s := range stubs {
		s.room = "Secrétariat"
		s.weapon = "DDOS"
		s.character = "Mr. Baudon"
		s.target = map[string]string{"Alice": "Bot 1", "Bot 1": "Bot 2", "Bot 2": "Alice"}[name]
	}
	// Secrétariat is reachable from the Cafétéria for the first round only,
	// so cancel before a second round begins.
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	turns := 0
	sess.Events = func(ev Event) {
		if ev.Type == EventTurnStarted {
			turns++
			if turns == 3 {
				cancel()
			}
		}
	}
	go func() { done <- sess.Run(ctx) }()

	err := <-done
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

// fixedChecker accepts exactly one accusation triple.
type fixedChecker struct{ want Accusation }

func (f fixedChecker) Check(_ context.Context, _ Player, a Accusation) (bool, error) {
	return a == f.want, nil
}

// TestSubmitAccusationRequiresChecker verifies the extension point is inert
// until a checker is installed.
func TestSubmitAccusationRequiresChecker(t *testing.T) {
	ctx := context.Background()
	_, _, sess, _ := newTestGame(t)

	accusation := Accusation{
		Character: mustCard(t, CategoryCharacter, "Mr. Pham"),
		Weapon:    mustCard(t, CategoryWeapon, "Velleda"),
		Room:      mustCard(t, CategoryRoom, "RU"),
	}
	if _, err := sess.SubmitAccusation(ctx, Player{Name: "Alice"}, accusation); !errors.Is(err, ErrNoChecker) {
		t.Errorf("SubmitAccusation error = %v, want ErrNoChecker", err)
	}

	sess.Checker = fixedChecker{want: accusation}
	ok, err := sess.SubmitAccusation(ctx, Player{Name: "Alice"}, accusation)
	if err != nil || !ok {
		t.Errorf("SubmitAccusation = %v, %v; want true, nil", ok, err)
	}
}

// TestNoPolicyForPlayer verifies session startup fails fast when a player has
// no decision policy.
func TestNoPolicyForPlayer(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	seedBoard(t, st)
	if err := st.AddPlayer(ctx, Player{Name: "Alice"}, StartRoom()); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	sess := NewSession(st, &nopPrompter{}, map[string]Policy{})
	if err := sess.PlayTurn(ctx); !errors.Is(err, ErrNoPolicy) {
		t.Errorf("PlayTurn error = %v, want ErrNoPolicy", err)
	}
}
