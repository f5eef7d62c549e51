// Package actions turns the server's valid-action list into exactly one
// input surface and gates what the player may submit from it.
package actions

import (
	"strings"

	"github.com/lox/cardtable/internal/protocol"
)

// SurfaceKind is the input surface shown to the player
type SurfaceKind int

const (
	SurfaceNone SurfaceKind = iota
	SurfaceCardSelect
	SurfaceSeparate
	SurfaceDeclare
	SurfaceChoose
	SurfaceBetting
)

func (k SurfaceKind) String() string {
	switch k {
	case SurfaceCardSelect:
		return "card-select"
	case SurfaceSeparate:
		return "separate"
	case SurfaceDeclare:
		return "declare"
	case SurfaceChoose:
		return "choose"
	case SurfaceBetting:
		return "betting"
	default:
		return "none"
	}
}

// priority orders surfaces when several kinds are offered at once
func (k SurfaceKind) priority() int {
	switch k {
	case SurfaceCardSelect, SurfaceSeparate:
		return 4
	case SurfaceDeclare:
		return 3
	case SurfaceChoose:
		return 2
	case SurfaceBetting:
		return 1
	default:
		return 0
	}
}

// surfaceFor maps every action kind onto the surface that answers it.
// Adding a kind to protocol.AllActionKinds without a case here is caught by
// TestEveryKindHasSurface.
func surfaceFor(kind protocol.ActionKind) SurfaceKind {
	switch kind {
	case protocol.ActionDraw, protocol.ActionDiscard, protocol.ActionPass, protocol.ActionExpose:
		return SurfaceCardSelect
	case protocol.ActionSeparate:
		return SurfaceSeparate
	case protocol.ActionDeclare:
		return SurfaceDeclare
	case protocol.ActionChoose:
		return SurfaceChoose
	case protocol.ActionFold, protocol.ActionCheck, protocol.ActionCall, protocol.ActionBet,
		protocol.ActionRaise, protocol.ActionBringIn, protocol.ActionComplete:
		return SurfaceBetting
	case protocol.ActionUnknown:
		return SurfaceNone
	}
	return SurfaceNone
}

// Surface is the single control surface chosen for a valid-action list
type Surface struct {
	Kind SurfaceKind
	// Primary is the action answered by a card-select, separate, declare or choose surface
	Primary protocol.ValidAction
	// Betting holds every betting action when Kind is SurfaceBetting
	Betting []protocol.ValidAction
}

// SelectSurface picks the surface for a list of valid actions: card
// selection first, then declare, then choose, then ordinary betting.
func SelectSurface(valid []protocol.ValidAction) Surface {
	var s Surface
	for _, va := range valid {
		kind := surfaceFor(va.Kind)
		if kind == SurfaceBetting {
			s.Betting = append(s.Betting, va)
		}
		if kind.priority() > s.Kind.priority() {
			s.Kind = kind
			s.Primary = va
		}
	}
	if s.Kind != SurfaceBetting {
		s.Betting = nil
	} else {
		s.Primary = protocol.ValidAction{}
	}
	return s
}

// actionName is the wire name to submit for va
func actionName(va protocol.ValidAction) string {
	if va.Kind != protocol.ActionUnknown {
		return va.Kind.String()
	}
	return va.Name
}

// title renders an action kind for a button, "bring_in" becoming "Bring In"
func title(kind protocol.ActionKind) string {
	words := strings.Split(kind.String(), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
