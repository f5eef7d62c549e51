package showdown

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lox/cardtable/internal/card"
	"github.com/lox/cardtable/internal/protocol"
)

// Namer resolves a user id to a display name
type Namer func(userID string) string

// DealLines announces community cards that appeared between two boards
func DealLines(prev, next map[string][]card.Card, order []string) []string {
	var lines []string
	for _, name := range subsetNames(next, order) {
		before, after := prev[name], next[name]
		if len(after) <= len(before) {
			continue
		}
		lines = append(lines, streetHeader(name, len(before), len(after)))
		if len(before) == 0 {
			lines = append(lines, fmt.Sprintf("Board: %s", card.Join(after)))
		} else {
			lines = append(lines, fmt.Sprintf("Board: %s %s", card.Join(after[:len(before)]), card.Join(after[len(before):])))
		}
	}
	return lines
}

func subsetNames(community map[string][]card.Card, order []string) []string {
	seen := make(map[string]bool, len(community))
	var out []string
	for _, name := range order {
		if _, ok := community[name]; ok && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	var rest []string
	for name := range community {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func streetHeader(subset string, before, after int) string {
	name := strings.ToLower(subset)
	if name == protocol.DefaultSubset || name == "community" {
		switch {
		case before == 0 && after == 3:
			name = "flop"
		case before == 3 && after == 4:
			name = "turn"
		case before == 4 && after == 5:
			name = "river"
		}
	}
	return fmt.Sprintf("*** %s ***", strings.ToUpper(strings.ReplaceAll(name, "_", " ")))
}

// Narrate builds the result log for a completed hand: who showed what, who
// won each pot, then the winning hand descriptions.
func Narrate(hc *protocol.HandComplete, names Namer) []string {
	if hc == nil {
		return nil
	}
	name := func(id string) string {
		if n := hc.Usernames[id]; n != "" {
			return n
		}
		if names != nil {
			if n := names(id); n != "" {
				return n
			}
		}
		return id
	}

	var lines []string
	lines = append(lines, "*** SHOWDOWN ***")

	ids := make([]string, 0, len(hc.Revealed))
	for id := range hc.Revealed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if len(hc.Revealed[id]) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s shows %s", name(id), card.Join(hc.Revealed[id])))
	}

	for i, pot := range hc.Pots {
		lines = append(lines, potLine(i, pot, name))
	}

	for _, w := range hc.WinningHands {
		who := w.Username
		if who == "" {
			who = name(w.PlayerID)
		}
		switch {
		case w.Description != "" && len(w.Cards) > 0:
			lines = append(lines, fmt.Sprintf("%s wins with %s %s", who, w.Description, card.Join(w.Cards)))
		case w.Description != "":
			lines = append(lines, fmt.Sprintf("%s wins with %s", who, w.Description))
		case len(w.Cards) > 0:
			lines = append(lines, fmt.Sprintf("%s wins with %s", who, card.Join(w.Cards)))
		}
	}
	return lines
}

func potName(i int, pot protocol.Pot) string {
	if pot.Name != "" {
		n := strings.ReplaceAll(pot.Name, "_", " ")
		return strings.ToUpper(n[:1]) + n[1:]
	}
	if i == 0 {
		return "Main pot"
	}
	return fmt.Sprintf("Side pot %d", i)
}

func potLine(i int, pot protocol.Pot, name func(string) string) string {
	label := potName(i, pot)
	winners := make([]string, len(pot.Winners))
	for j, id := range pot.Winners {
		winners[j] = name(id)
	}

	switch {
	case len(winners) == 0:
		return fmt.Sprintf("%s ($%d) returned", label, pot.Amount)
	case len(winners) == 1:
		return fmt.Sprintf("%s wins %s ($%d)", winners[0], label, pot.Amount)
	}

	each := pot.Amount / len(winners)
	line := fmt.Sprintf("%s ($%d) split between %s: $%d each", label, pot.Amount, joinNames(winners), each)
	if odd := pot.Amount - each*len(winners); odd > 0 {
		line += fmt.Sprintf(" ($%d odd chip to %s)", odd, winners[0])
	}
	return line
}

func joinNames(names []string) string {
	if len(names) <= 2 {
		return strings.Join(names, " and ")
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
