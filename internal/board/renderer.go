package board

import (
	"github.com/charmbracelet/log"
	"github.com/lox/cardtable/internal/card"
)

// Node is a rendered slot. Its address is stable for as long as the slot
// count does not change.
type Node struct {
	Slot Slot
}

// Renderer keeps the rendered slot nodes between snapshots
type Renderer struct {
	logger   *log.Logger
	plan     Plan
	nodes    []*Node
	rebuilds int
}

// NewRenderer creates a renderer with no slots
func NewRenderer(logger *log.Logger) *Renderer {
	return &Renderer{logger: logger.WithPrefix("board")}
}

// Render applies a plan. Slots are torn down and recreated only when the
// slot count differs from what is on screen; otherwise existing nodes are
// patched in place. Dealt cards with no slot are logged and skipped. It
// reports whether a rebuild happened.
func (r *Renderer) Render(plan Plan) bool {
	slots := plan.Slots()
	r.plan = plan

	for _, s := range plan.Unplaced {
		r.logger.Warn("Board slot not found", "subset", s.Subset, "index", s.Index, "card", s.Card)
	}

	if len(slots) != len(r.nodes) {
		r.logger.Debug("Rebuilding board", "type", plan.Type, "from", len(r.nodes), "to", len(slots))
		r.nodes = make([]*Node, len(slots))
		for i, s := range slots {
			r.nodes[i] = &Node{Slot: s}
		}
		r.rebuilds++
		return true
	}

	for i, s := range slots {
		r.nodes[i].Slot = s
	}
	return false
}

// Highlight patches the winning flag on every node in place
func (r *Renderer) Highlight(winning map[card.Card]bool) {
	for _, n := range r.nodes {
		n.Slot.Winning = n.Slot.Kind == SlotCard && winning[n.Slot.Card]
	}
}

// Nodes returns the rendered nodes in slot order
func (r *Renderer) Nodes() []*Node {
	return r.nodes
}

// Plan returns a copy of what is on screen, including in-place patches
func (r *Renderer) Plan() Plan {
	out := Plan{Type: r.plan.Type, Hidden: r.plan.Hidden}
	i := 0
	for _, row := range r.plan.Rows {
		cp := Row{Name: row.Name, Groups: make([]Group, len(row.Groups))}
		for gi, g := range row.Groups {
			slots := make([]Slot, len(g.Slots))
			for si := range g.Slots {
				if i < len(r.nodes) {
					slots[si] = r.nodes[i].Slot
				}
				i++
			}
			cp.Groups[gi] = Group{Name: g.Name, Slots: slots}
		}
		out.Rows = append(out.Rows, cp)
	}
	return out
}

// Rebuilds counts structural rebuilds since creation
func (r *Renderer) Rebuilds() int {
	return r.rebuilds
}
