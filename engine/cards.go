package engine

// The card universe and board topology are fixed for every game. The names
// come from the campus setting: staff members, improvised weapons, and the
// rooms of the building.

var characterNames = [...]string{
	"Mr. Adam",
	"Mr. Godin",
	"Mr. Kerbellec",
	"Mr. Kamp",
	"Mr. Pham",
	"Mr. Baudon",
	"Mrs. Rault",
}

var weaponNames = [...]string{
	"A boule",
	"Pain au chocolat",
	"Babyfoot",
	"Le plat sans viande",
	"Pc gameur",
	"Velleda",
	"DDOS",
	"Cours de Kermebellec",
}

var roomNames = [...]string{
	"RU",
	"BU",
	"Cafétéria",
	"Amphi A",
	"Amphi B",
	"Amphi C",
	"Secrétariat",
	"Salle des profs",
	"Imprimerie",
}

// StartRoomName is where every player begins the game.
const StartRoomName = "Cafétéria"

// roomAccess is the directed board topology. Edges are NOT symmetric: the
// Cafétéria does not open onto Amphi B even though Amphi B opens onto the
// Cafétéria. Order within each list is the presentation order for choices.
var roomAccess = []struct {
	from string
	to   []string
}{
	{"RU", []string{"Cafétéria", "Amphi B"}},
	{"BU", []string{"Cafétéria", "Amphi C"}},
	{"Cafétéria", []string{"Secrétariat", "Amphi A", "RU", "BU", "Imprimerie"}},
	{"Amphi A", []string{"Cafétéria", "Secrétariat", "Salle des profs"}},
	{"Amphi B", []string{"RU", "Cafétéria", "BU", "Amphi C"}},
	{"Amphi C", []string{"Amphi B", "BU"}},
	{"Secrétariat", []string{"Salle des profs", "Amphi A", "Cafétéria"}},
	{"Salle des profs", []string{"Amphi A", "Secrétariat"}},
	{"Imprimerie", []string{"Cafétéria"}},
}

func cardsOf(cat Category, names []string) []Card {
	out := make([]Card, len(names))
	for i, n := range names {
		out[i] = Card{Category: cat, Name: n}
	}
	return out
}

// Characters returns the full character card list in fixed order.
func Characters() []Card { return cardsOf(CategoryCharacter, characterNames[:]) }

// Weapons returns the full weapon card list in fixed order.
func Weapons() []Card { return cardsOf(CategoryWeapon, weaponNames[:]) }

// Rooms returns the full room card list in fixed order.
func Rooms() []Card { return cardsOf(CategoryRoom, roomNames[:]) }

// AllCards returns the universe for one category in fixed order.
func AllCards(cat Category) []Card {
	switch cat {
	case CategoryCharacter:
		return Characters()
	case CategoryWeapon:
		return Weapons()
	case CategoryRoom:
		return Rooms()
	}
	return nil
}

// CharacterCard returns the character card with the given name.
func CharacterCard(name string) (Card, bool) { return findCard(CategoryCharacter, name) }

// WeaponCard returns the weapon card with the given name.
func WeaponCard(name string) (Card, bool) { return findCard(CategoryWeapon, name) }

// RoomCard returns the room card with the given name.
func RoomCard(name string) (Card, bool) { return findCard(CategoryRoom, name) }

func findCard(cat Category, name string) (Card, bool) {
	for _, c := range AllCards(cat) {
		if c.Name == name {
			return c, true
		}
	}
	return Card{}, false
}

// StartRoom returns the shared starting room.
func StartRoom() Card {
	c, _ := RoomCard(StartRoomName)
	return c
}

// BoardAccess returns every directed access edge of the board in fixed order.
func BoardAccess() []struct{ From, To Card } {
	var out []struct{ From, To Card }
	for _, r := range roomAccess {
		from, _ := RoomCard(r.from)
		for _, t := range r.to {
			to, _ := RoomCard(t)
			out = append(out, struct{ From, To Card }{from, to})
		}
	}
	return out
}

// AccessibleFrom returns the rooms reachable from the given room via one
// outgoing edge, in fixed presentation order.
func AccessibleFrom(room Card) []Card {
	for _, r := range roomAccess {
		if r.from == room.Name {
			out := make([]Card, 0, len(r.to))
			for _, t := range r.to {
				c, _ := RoomCard(t)
				out = append(out, c)
			}
			return out
		}
	}
	return nil
}
