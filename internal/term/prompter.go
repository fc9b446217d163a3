// Package term is the interactive front end: numbered selection menus read
// from stdin, colored announcements, and table renderings of a player's hand
// and detective notebook.
package term

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/lhoussin/limier/engine"
)

var (
	announce = color.New(color.FgCyan)
	warn     = color.New(color.FgYellow)
	heading  = color.New(color.FgGreen, color.Bold)
)

// clearSeq wipes the screen and homes the cursor. Private views are wrapped
// in it so a hot-seat opponent cannot read them back from the scrollback.
const clearSeq = "\033[2J\033[H"

// Prompter implements engine.Prompter over a line reader and a writer. An
// invalid selection is re-prompted here and never reaches the engine.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// New returns a Prompter reading lines from in and rendering to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Choose renders a 1-based numbered menu and blocks until a valid selection
// is entered. Returns the 0-based index. Closed input surfaces as an error
// and ends the session.
func (t *Prompter) Choose(ctx context.Context, prompt string, options []string) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		fmt.Fprintln(t.out)
		announce.Fprintln(t.out, prompt)
		for i, opt := range options {
			fmt.Fprintf(t.out, "  [%d] %s\n", i+1, opt)
		}
		fmt.Fprintf(t.out, "> ")

		line, err := t.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || n < 1 || n > len(options) {
			warn.Fprintf(t.out, "Enter a number between 1 and %d.\n", len(options))
			continue
		}
		return n - 1, nil
	}
}

// Notify prints a one-line announcement.
func (t *Prompter) Notify(msg string) {
	announce.Fprintln(t.out, msg)
}

// Pause blocks until the user presses Enter.
func (t *Prompter) Pause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fmt.Fprint(t.out, "\nPress Enter for the next turn... ")
	_, err := t.readLine()
	return err
}

// ShowCards renders the player's hand grouped by category. The view is
// private: the screen is cleared before and after.
func (t *Prompter) ShowCards(player string, cards []engine.Card) {
	t.private(func() {
		heading.Fprintf(t.out, "%s's cards\n", player)
		table := tablewriter.NewWriter(t.out)
		table.Header("Category", "Card")
		for _, cat := range engine.Categories {
			for _, c := range cards {
				if c.Category == cat {
					table.Append([]string{c.Category.String(), c.Name})
				}
			}
		}
		table.Render()
	})
}

// ShowNotebook renders the full deduction grid: one row per card in the
// universe, one column per other player, the owner's own hand as its own
// column. A check means a recorded possession belief, a cross a recorded
// negative; positive wins when both were ever recorded.
func (t *Prompter) ShowNotebook(nb *engine.Notebook) {
	t.private(func() {
		heading.Fprintf(t.out, "%s's notebook\n", nb.Owner)

		table := tablewriter.NewWriter(t.out)
		header := make([]string, 0, len(nb.Subjects)+2)
		header = append(header, "Card", "Mine")
		header = append(header, nb.Subjects...)
		table.Header(toAny(header)...)

		for _, cat := range engine.Categories {
			for _, c := range engine.AllCards(cat) {
				row := make([]string, 0, len(header))
				row = append(row, c.Name, checkmark(nb.Holds(c.Name)))
				for _, subject := range nb.Subjects {
					cell := ""
					if pol, ok := nb.Mark(subject, c.Name); ok {
						cell = markSymbol(pol)
					}
					row = append(row, cell)
				}
				table.Append(row)
			}
		}
		table.Render()
	})
}

// private clears the screen, runs render, waits for Enter and clears again.
func (t *Prompter) private(render func()) {
	fmt.Fprint(t.out, clearSeq)
	render()
	fmt.Fprint(t.out, "\nPress Enter to hide... ")
	_, _ = t.readLine()
	fmt.Fprint(t.out, clearSeq)
}

func (t *Prompter) readLine() (string, error) {
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return "", io.EOF
	}
	return t.in.Text(), nil
}

func checkmark(b bool) string {
	if b {
		return "✔"
	}
	return ""
}

func markSymbol(p engine.Polarity) string {
	if p == engine.Possesses {
		return "✔"
	}
	return "✘"
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
