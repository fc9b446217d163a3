package engine

import "context"

// Notebook is the deduction view one player has of the game: their own held
// cards plus everything their belief ledger says about every other player.
// It is a read-only snapshot built on demand; the ledger itself lives in the
// Store.
type Notebook struct {
	Owner    string
	OwnCards []Card

	// Known maps other player name -> card name -> recorded polarity.
	Known map[string]map[string]Polarity

	// Subjects lists the other players in setup order, for stable rendering.
	Subjects []string
}

// BuildNotebook assembles the notebook for owner from the store.
func BuildNotebook(ctx context.Context, st Store, owner Player) (*Notebook, error) {
	own, err := st.PlayerCards(ctx, owner.Name)
	if err != nil {
		return nil, err
	}

	players, err := st.Players(ctx)
	if err != nil {
		return nil, err
	}

	nb := &Notebook{
		Owner:    owner.Name,
		OwnCards: own,
		Known:    make(map[string]map[string]Polarity),
	}

	for _, p := range players {
		if p.Name == owner.Name {
			continue
		}
		nb.Subjects = append(nb.Subjects, p.Name)
		merged := make(map[string]Polarity)
		for _, cat := range Categories {
			known, err := st.QueryBeliefs(ctx, owner.Name, p.Name, cat)
			if err != nil {
				return nil, err
			}
			for name, pol := range known {
				merged[name] = pol
			}
		}
		nb.Known[p.Name] = merged
	}

	return nb, nil
}

// Holds reports whether the owner physically holds the named card.
func (nb *Notebook) Holds(cardName string) bool {
	for _, c := range nb.OwnCards {
		if c.Name == cardName {
			return true
		}
	}
	return false
}

// Mark returns the polarity the owner recorded about subject holding the
// named card, if any.
func (nb *Notebook) Mark(subject, cardName string) (Polarity, bool) {
	pol, ok := nb.Known[subject][cardName]
	return pol, ok
}
