package protocol

import (
	"encoding/json"
	"strings"
)

// LayoutType is the board topology tag
type LayoutType string

const (
	LayoutNone      LayoutType = "none"
	LayoutLinear    LayoutType = "linear"
	LayoutMultiRow  LayoutType = "multi-row"
	LayoutBranching LayoutType = "branching"
	LayoutGrid      LayoutType = "grid"
)

// ParseLayoutType normalises the topology tag. An empty tag is linear.
func ParseLayoutType(s string) LayoutType {
	switch strings.NewReplacer("_", "-", " ", "-").Replace(strings.ToLower(strings.TrimSpace(s))) {
	case "none", "hidden", "no-board":
		return LayoutNone
	case "multi-row", "multirow", "rows":
		return LayoutMultiRow
	case "branching", "branch", "branched":
		return LayoutBranching
	case "grid", "matrix":
		return LayoutGrid
	default:
		return LayoutLinear
	}
}

// LayoutGroup is a run of subsets laid out side by side within a row
type LayoutGroup struct {
	Name    string   `json:"name,omitempty"`
	Subsets []string `json:"subsets"`
	Counts  []int    `json:"counts,omitempty"`
}

// LayoutRow is one row of a multi-row or branching board
type LayoutRow struct {
	Name    string        `json:"name,omitempty"`
	Subsets []string      `json:"subsets,omitempty"`
	Counts  []int         `json:"counts,omitempty"`
	Groups  []LayoutGroup `json:"groups,omitempty"`
}

// GridCell asks for the card at Index of a single subset, or for the card
// present in every listed subset when more than one is named.
type GridCell struct {
	Subsets []string `json:"subsets"`
	Index   int      `json:"index,omitempty"`
}

// UnmarshalJSON accepts "flop", ["row1","col2"] or {"subsets":[...],"index":n}
func (c *GridCell) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*c = GridCell{Subsets: []string{name}}
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		*c = GridCell{Subsets: names}
		return nil
	}
	l, err := newLenient(data)
	if err != nil {
		return err
	}
	if !l.decode(&c.Subsets, "subsets", "intersection") {
		if s := l.str("subset"); s != "" {
			c.Subsets = []string{s}
		}
	}
	c.Index = l.num("index", "position")
	return nil
}

// Layout is the server-supplied board topology descriptor
type Layout struct {
	Type          LayoutType    `json:"type"`
	ExpectedCards int           `json:"expected_cards,omitempty"`
	Subsets       []string      `json:"subsets,omitempty"`
	Rows          []LayoutRow   `json:"rows,omitempty"`
	Grid          [][]*GridCell `json:"grid,omitempty"`
}

// UnmarshalJSON accepts field aliases and normalises the type tag
func (lo *Layout) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		*lo = Layout{Type: ParseLayoutType(tag)}
		return nil
	}
	l, err := newLenient(data)
	if err != nil {
		return err
	}
	*lo = Layout{}
	lo.Type = ParseLayoutType(l.str("type", "topology", "kind"))
	lo.ExpectedCards = l.num("expected_cards", "expectedCards", "total_cards")
	l.decode(&lo.Subsets, "subsets", "order")
	l.decode(&lo.Rows, "rows")
	l.decode(&lo.Grid, "grid", "cells")
	return nil
}
