package demand

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heatpump-economics/internal/model"
)

func TestNewTemplate(t *testing.T) {
	tpl, err := NewTemplate(DefaultYear, false, 1)
	require.NoError(t, err)
	require.Equal(t, 35040, tpl.Len())
	assert.Equal(t, 365, tpl.Days())
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), tpl.Times[0])
	assert.Equal(t, time.Date(2025, 12, 31, 23, 45, 0, 0, time.UTC), tpl.Times[tpl.Len()-1])
	for i := 1; i < tpl.Len(); i++ {
		require.Equal(t, Step, tpl.Times[i].Sub(tpl.Times[i-1]))
	}
	for _, s := range tpl.Scale {
		require.Equal(t, 1.0, s)
	}
}

func TestNewTemplateWeekendScale(t *testing.T) {
	tpl, err := NewTemplate(DefaultYear, true, 0.4)
	require.NoError(t, err)
	// 2025-01-04 is a Saturday
	sat := 3 * StepsPerDay
	assert.Equal(t, 1.0, tpl.Scale[sat-1])
	assert.Equal(t, 0.4, tpl.Scale[sat])
	assert.Equal(t, 0.4, tpl.Scale[sat+2*StepsPerDay-1])
	assert.Equal(t, 1.0, tpl.Scale[sat+2*StepsPerDay])

	_, err = NewTemplate(DefaultYear, true, 1.5)
	assert.Error(t, err)
}

func TestBatchAlternatingHours(t *testing.T) {
	proc := BatchProcess{HourOn: 0, HourOff: 24, LengthOn: 1, LengthOff: 1}
	day, err := proc.DayPattern()
	require.NoError(t, err)
	require.Len(t, day, StepsPerDay)
	for i, v := range day {
		want := 0.0
		if (i/4)%2 == 0 {
			want = 1
		}
		require.Equal(t, want, v, "step %d", i)
	}

	tpl, err := NewTemplate(DefaultYear, false, 1)
	require.NoError(t, err)
	points, err := Generate(tpl, proc)
	require.NoError(t, err)
	require.Len(t, points, 35040)

	for d := 0; d < tpl.Days(); d++ {
		sum := 0.0
		for _, p := range points[d*StepsPerDay : (d+1)*StepsPerDay] {
			sum += p.Demand
		}
		require.Equal(t, 48.0, sum, "day %d", d)
	}
}

func TestBatchWindowAndTrailingCycleDropped(t *testing.T) {
	// window 6..17 holds two 4h+1h cycles; the remaining hour is dropped
	proc := BatchProcess{HourOn: 6, HourOff: 17, LengthOn: 4, LengthOff: 1}
	assert.Equal(t, 2, proc.BatchesPerDay())
	day, err := proc.DayPattern()
	require.NoError(t, err)

	on := 0.0
	for i, v := range day {
		if i < 6*StepsPerHour || i >= 16*StepsPerHour {
			require.Equal(t, 0.0, v, "step %d", i)
		}
		on += v
	}
	assert.Equal(t, 2*4*4.0, on)
}

func TestBatchWindowTooShort(t *testing.T) {
	proc := BatchProcess{HourOn: 8, HourOff: 9, LengthOn: 1, LengthOff: 1}
	assert.Equal(t, 0, proc.BatchesPerDay())
	day, err := proc.DayPattern()
	require.NoError(t, err)
	for _, v := range day {
		require.Equal(t, 0.0, v)
	}
}

func TestBatchInvalid(t *testing.T) {
	_, err := BatchProcess{HourOn: 0, HourOff: 24}.DayPattern()
	assert.Error(t, err)
	_, err = BatchProcess{HourOn: 0, HourOff: 25, LengthOn: 1}.DayPattern()
	assert.Error(t, err)
}

func TestContinuousConstant(t *testing.T) {
	tpl, err := NewTemplate(DefaultYear, false, 1)
	require.NoError(t, err)
	points, err := Generate(tpl, ConstantProcess())
	require.NoError(t, err)
	require.Len(t, points, 35040)
	for _, p := range points {
		require.Equal(t, 1.0, p.Demand)
	}
}

func TestContinuousHourlyShapeAndWeekend(t *testing.T) {
	hourly := make([]float64, 24)
	for h := range hourly {
		hourly[h] = float64(h) / 23
	}
	tpl, err := NewTemplate(DefaultYear, true, 0.5)
	require.NoError(t, err)
	points, err := Generate(tpl, ContinuousProcess{HourlyDemand: hourly})
	require.NoError(t, err)

	// Wednesday 2025-01-01 10:30
	assert.InDelta(t, 10.0/23, points[10*4+2].Demand, 1e-12)
	// Saturday 2025-01-04 10:30 is halved
	assert.InDelta(t, 0.5*10.0/23, points[3*StepsPerDay+10*4+2].Demand, 1e-12)
}

func TestContinuousInvalid(t *testing.T) {
	_, err := ContinuousProcess{HourlyDemand: []float64{1, 1}}.DayPattern()
	assert.Error(t, err)

	bad := ConstantProcess()
	bad.HourlyDemand[3] = 1.2
	_, err = bad.DayPattern()
	assert.Error(t, err)
}

func TestWindow(t *testing.T) {
	tpl, err := NewTemplate(DefaultYear, false, 1)
	require.NoError(t, err)
	points, err := Generate(tpl, ConstantProcess())
	require.NoError(t, err)

	week, err := Window(points, WindowFullWeek)
	require.NoError(t, err)
	require.Len(t, week, 7*StepsPerDay)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), week[0].Time)
	assert.Equal(t, time.Date(2025, 1, 12, 23, 45, 0, 0, time.UTC), week[len(week)-1].Time)

	weekend, err := Window(points, WindowWeekend)
	require.NoError(t, err)
	require.Len(t, weekend, 2*StepsPerDay)
	assert.Equal(t, time.Saturday, weekend[0].Time.Weekday())

	weekday, err := Window(points, WindowWeekday)
	require.NoError(t, err)
	require.Len(t, weekday, StepsPerDay)
	assert.Equal(t, time.Tuesday, weekday[0].Time.Weekday())

	_, err = Window(points, WindowKind("month"))
	assert.Error(t, err)
	_, err = Window([]model.DemandPoint{}, WindowWeekend)
	assert.Error(t, err)
}

func TestFromPrebuilt(t *testing.T) {
	tpl, err := NewTemplate(DefaultYear, false, 1)
	require.NoError(t, err)

	values := make([]float64, tpl.Len()-1)
	for i := range values {
		values[i] = float64(i%10) * 2
	}
	points, err := FromPrebuilt(tpl, values)
	require.NoError(t, err)
	require.Len(t, points, tpl.Len())
	assert.InDelta(t, 1.0, points[9].Demand, 1e-12)
	assert.InDelta(t, 8.0/18, points[4].Demand, 1e-12)
	// last value repeated to close the year
	assert.Equal(t, points[tpl.Len()-2].Demand, points[tpl.Len()-1].Demand)

	_, err = FromPrebuilt(tpl, []float64{0, 0})
	assert.Error(t, err)
}

func TestFromPrebuiltRejectsBadValues(t *testing.T) {
	tpl, err := NewTemplate(DefaultYear, false, 1)
	require.NoError(t, err)

	for name, v := range map[string]float64{"blank": math.NaN(), "negative": -0.2, "infinite": math.Inf(1)} {
		t.Run(name, func(t *testing.T) {
			_, err := FromPrebuilt(tpl, []float64{1, 0.5, v, 0.8})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "value 2")
		})
	}
}
