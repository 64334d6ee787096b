package postal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_KnownCodes(t *testing.T) {
	r := NewResolver()

	loc, ok := r.Resolve("M5V 2T6")
	require.True(t, ok)
	assert.Equal(t, "Toronto", loc.City)
	assert.Equal(t, "Ontario", loc.Province)
	assert.InDelta(t, 43.64, loc.Point.Lat, 0.01)
	assert.InDelta(t, -79.39, loc.Point.Lon, 0.01)

	loc, ok = r.Resolve("T2P 1J9")
	require.True(t, ok)
	assert.Equal(t, "Calgary", loc.City)
	assert.Equal(t, "Alberta", loc.Province)
}

func TestResolver_NormalizesInput(t *testing.T) {
	r := NewResolver()

	for _, code := range []string{"m5v 2t6", "M5V2T6", "  M5V 2T6  ", "m5v"} {
		loc, ok := r.Resolve(code)
		require.True(t, ok, "code %q should resolve", code)
		assert.Equal(t, "Toronto", loc.City)
	}
}

func TestResolver_UnresolvableCodes(t *testing.T) {
	r := NewResolver()

	for _, code := range []string{"", "M5", "Z9Z 9Z9", "90210", "n/a"} {
		_, ok := r.Resolve(code)
		assert.False(t, ok, "code %q should not resolve", code)
	}
}
