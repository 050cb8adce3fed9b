package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanColumn(t *testing.T) {
	p := DefaultParams()
	column := Rect{X0: 0, Y0: 0, X1: 300, Y1: 760}
	tokens := []Token{
		tok("1.", 10, 60),
		tok("다음", 30, 60),
		tok("①", 20, 120), tok("②", 150, 120),
		tok("③", 20, 140), tok("④", 150, 140),
		tok("⑤", 20, 160),
		// question 2 only carries three markers
		tok("2.", 10, 300),
		tok("①", 20, 340), tok("②", 20, 360), tok("③", 20, 380),
		tok("3.", 10, 500),
		tok("①", 20, 600), tok("②", 20, 620), tok("③", 20, 640),
		tok("④", 20, 660), tok("⑤", 20, 680),
	}

	plan := PlanColumn(tokens, column, 760, p)

	require.Len(t, plan.Questions, 2)
	assert.Equal(t, 1, plan.Questions[0].Number())
	assert.Equal(t, 3, plan.Questions[1].Number())

	require.Len(t, plan.Skipped, 1)
	assert.Equal(t, Skip{Number: 2, Reason: SkipInsufficientMarkers, Markers: 3}, plan.Skipped[0])

	first := plan.Questions[0]
	assert.Equal(t, 300.0, first.Region.Bottom)
	assert.True(t, first.HasStem)
	assert.Equal(t, Rect{X0: 0, Y0: 50, X1: 300, Y1: 115}, first.Stem)
	assert.Equal(t, 150.0, first.Boxes[0].Right)

	last := plan.Questions[1]
	assert.Equal(t, 760.0, last.Region.Bottom)
	assert.Equal(t, 760.0-p.BoxInset, last.Boxes[4].Box.Y1)
}

func TestPlanColumnDegenerateRegion(t *testing.T) {
	tokens := []Token{
		tok("1.", 10, 100),
		tok("2.", 30, 100),
		tok("①", 20, 120), tok("②", 20, 140), tok("③", 20, 160),
		tok("④", 20, 180), tok("⑤", 20, 200),
	}

	plan := PlanColumn(tokens, Rect{X1: 300, Y1: 760}, 760, DefaultParams())

	require.Len(t, plan.Skipped, 1)
	assert.Equal(t, Skip{Number: 1, Reason: SkipDegenerateRegion}, plan.Skipped[0])
	require.Len(t, plan.Questions, 1)
	assert.Equal(t, 2, plan.Questions[0].Number())
}

func TestPlanColumnNoAnchors(t *testing.T) {
	plan := PlanColumn([]Token{tok("①", 20, 100)}, Rect{X1: 300, Y1: 760}, 760, DefaultParams())
	assert.Empty(t, plan.Questions)
	assert.Empty(t, plan.Skipped)
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.Zoom = 0
	assert.Error(t, p.Validate())

	p = DefaultParams()
	p.SafeBottomRatio = 1.5
	assert.Error(t, p.Validate())
}
