package amount

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestParseNEAR(t *testing.T) {
	v, err := ParseNEAR("1 NEAR")
	require.NoError(t, err)
	require.Equal(t, YoctoPerNEAR.String(), v.String())

	v, err = ParseNEAR("1.5 near")
	require.NoError(t, err)
	half := new(uint256.Int).Div(YoctoPerNEAR, uint256.NewInt(2))
	want := new(uint256.Int).Add(YoctoPerNEAR, half)
	require.Equal(t, want.String(), v.String())

	v, err = ParseNEAR("1 yocto")
	require.NoError(t, err)
	require.Equal(t, "1", v.String())

	_, err = ParseNEAR("1000000000000000000000000")
	require.Error(t, err, "bare numeric strings must be rejected as ambiguous")

	_, err = ParseNEAR("1 parsecs")
	require.Error(t, err)
}

func TestParseGas(t *testing.T) {
	g, err := ParseGas("30 Tgas")
	require.NoError(t, err)
	require.Equal(t, uint64(30)*YoctoPerTgas, g)

	g, err = ParseGas("30 tgas")
	require.NoError(t, err)
	require.Equal(t, uint64(30)*YoctoPerTgas, g)

	g, err = ParseGas("12345")
	require.NoError(t, err)
	require.Equal(t, uint64(12345), g)
}

func TestToNEARString(t *testing.T) {
	require.Equal(t, "1", ToNEARString(YoctoPerNEAR))
	require.Equal(t, "0.000000000000000000000001", ToNEARString(uint256.NewInt(1)))
}
