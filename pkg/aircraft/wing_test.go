package aircraft

import (
	"math"
	"testing"

	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvertBilinear(t *testing.T) {
	// chord surface twisted by 40 degrees between root and tip
	th := 40 * math.Pi / 180
	lei, tei := geom.P(0, 0, 0), geom.P(2, 0, 0)
	leo, teo := geom.P(0, 5, 0), geom.P(2*math.Cos(th), 5, 2*math.Sin(th))
	foot := geom.Bilerp(lei, tei, leo, teo, 0.8, 0.9)

	eta, xsi, ok := invertBilinear(lei, tei, leo, teo, foot, maxInvertIterations)
	require.True(t, ok)
	assert.InDelta(t, 0.9, eta, 1e-9)
	assert.InDelta(t, 0.8, xsi, 1e-9)

	// one step from the patch centre cannot settle on a twisted patch
	_, _, ok = invertBilinear(lei, tei, leo, teo, foot, 1)
	assert.False(t, ok, "an unsettled search must not report success")

	_, _, ok = invertBilinear(lei, lei, leo, leo, foot, maxInvertIterations)
	assert.False(t, ok, "a degenerate patch has no inverse")
}
