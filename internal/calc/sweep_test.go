package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseInputs() Inputs {
	return Inputs{
		SourceC:             30,
		SinkC:               90,
		OperatingHours:      6000,
		HeatPricePerMWh:     50,
		ElecPricePerMWh:     150,
		InterestRate:        0.05,
		LifetimeYears:       15,
		ExergeticEfficiency: 0.6,
	}
}

func TestSweepElectricityPrice(t *testing.T) {
	in := baseInputs()
	res, err := Sweep(in, VarElectricityPrice, 0)
	require.NoError(t, err)
	require.Len(t, res.Points, DefaultSweepPoints)

	assert.InDelta(t, 100, res.Points[0].X, 1e-9)
	assert.InDelta(t, 200, res.Points[len(res.Points)-1].X, 1e-9)
	assert.Equal(t, 150.0, res.Current.X)
	assert.InDelta(t, in.AllowableInvestment(), res.Current.Y, 1e-12)

	// allowable investment falls as electricity gets more expensive
	for i := 1; i < len(res.Points); i++ {
		assert.Less(t, res.Points[i].Y, res.Points[i-1].Y)
	}
}

func TestSweepSinkTemperatureRange(t *testing.T) {
	res, err := Sweep(baseInputs(), VarSinkTemperature, 11)
	require.NoError(t, err)
	require.Len(t, res.Points, 11)
	assert.InDelta(t, 50, res.Points[0].X, 1e-9)
	assert.InDelta(t, 250, res.Points[10].X, 1e-9)
}

func TestSweepEveryVariable(t *testing.T) {
	for _, v := range Variables {
		res, err := Sweep(baseInputs(), v, 5)
		require.NoError(t, err, v)
		assert.Len(t, res.Points, 5, v)
	}
}

func TestSweepUnknownVariable(t *testing.T) {
	_, err := Sweep(baseInputs(), Variable("colour"), 10)
	assert.Error(t, err)
}

func TestSweepRelativePrice(t *testing.T) {
	in := baseInputs()
	res, err := SweepRelativePrice(in, VarSinkTemperature, 20)
	require.NoError(t, err)
	assert.InDelta(t, COP(30, 90, 0.6), res.Current.Y, 1e-12)
	for i := 1; i < len(res.Points); i++ {
		assert.Less(t, res.Points[i].Y, res.Points[i-1].Y)
	}

	_, err = SweepRelativePrice(in, VarLifetime, 20)
	assert.Error(t, err)
}
