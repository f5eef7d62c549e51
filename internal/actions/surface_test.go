package actions

import (
	"testing"

	"github.com/lox/cardtable/internal/protocol"
	"github.com/stretchr/testify/assert"
)

func va(kind protocol.ActionKind, min, max int) protocol.ValidAction {
	return protocol.ValidAction{Kind: kind, Name: kind.String(), MinAmount: min, MaxAmount: max}
}

func TestEveryKindHasSurface(t *testing.T) {
	for _, kind := range protocol.AllActionKinds {
		assert.NotEqual(t, SurfaceNone, surfaceFor(kind), "kind %s", kind)
	}
	assert.Equal(t, SurfaceNone, surfaceFor(protocol.ActionUnknown))
}

func TestSelectSurfacePriority(t *testing.T) {
	tests := []struct {
		name    string
		actions []protocol.ValidAction
		want    SurfaceKind
		primary protocol.ActionKind
	}{
		{"empty", nil, SurfaceNone, protocol.ActionUnknown},
		{"betting only", []protocol.ValidAction{va(protocol.ActionFold, 0, 0), va(protocol.ActionCall, 10, 10)}, SurfaceBetting, protocol.ActionUnknown},
		{"draw beats betting", []protocol.ValidAction{va(protocol.ActionFold, 0, 0), va(protocol.ActionDraw, 0, 5)}, SurfaceCardSelect, protocol.ActionDraw},
		{"separate beats declare", []protocol.ValidAction{va(protocol.ActionDeclare, 0, 0), va(protocol.ActionSeparate, 0, 0)}, SurfaceSeparate, protocol.ActionSeparate},
		{"declare beats choose", []protocol.ValidAction{va(protocol.ActionChoose, 0, 0), va(protocol.ActionDeclare, 0, 0)}, SurfaceDeclare, protocol.ActionDeclare},
		{"choose beats betting", []protocol.ValidAction{va(protocol.ActionCheck, 0, 0), va(protocol.ActionChoose, 0, 0)}, SurfaceChoose, protocol.ActionChoose},
		{"first card kind wins", []protocol.ValidAction{va(protocol.ActionExpose, 1, 1), va(protocol.ActionDiscard, 0, 2)}, SurfaceCardSelect, protocol.ActionExpose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SelectSurface(tt.actions)
			assert.Equal(t, tt.want, s.Kind)
			assert.Equal(t, tt.primary, s.Primary.Kind)
			if tt.want == SurfaceBetting {
				assert.Len(t, s.Betting, len(tt.actions))
			} else {
				assert.Empty(t, s.Betting)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Bring In", title(protocol.ActionBringIn))
	assert.Equal(t, "Fold", title(protocol.ActionFold))
}
