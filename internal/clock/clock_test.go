package clock

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestNewDefaults(t *testing.T) {
	c := New()

	testutil.AssertEqual(t, "hour", c.Hour(), 8)
	testutil.AssertEqual(t, "minute", c.Minute(), 0)
	testutil.AssertEqual(t, "day", c.DayNumber(), 1)
}

func TestAdvance(t *testing.T) {
	c := New()

	// 30 real seconds at 2 game-minutes/second = 1 game hour
	c.Advance(30_000)
	testutil.AssertEqual(t, "hour", c.Hour(), 9)
	testutil.AssertEqual(t, "minute", c.Minute(), 0)
}

func TestAdvanceAccumulatesFractions(t *testing.T) {
	c := New(WithStartMinutes(0))

	// 250ms at the default rate is half a game minute
	c.Advance(250)
	testutil.AssertEqual(t, "minute", c.Minute(), 0)

	c.Advance(250)
	testutil.AssertEqual(t, "minute", c.Minute(), 1)
}

func TestCustomRate(t *testing.T) {
	c := New(WithStartMinutes(0), WithRate(60))

	// 1 real second = 1 game hour
	c.Advance(1000)
	testutil.AssertEqual(t, "hour", c.Hour(), 1)
}

func TestDayRollover(t *testing.T) {
	c := New(WithStartMinutes(1439))
	testutil.AssertEqual(t, "day", c.DayNumber(), 1)
	testutil.AssertEqual(t, "hour", c.Hour(), 23)

	c.Advance(30_000) // +1 game hour
	testutil.AssertEqual(t, "day", c.DayNumber(), 2)
	testutil.AssertEqual(t, "hour", c.Hour(), 0)
}

func TestTimeOfDayBands(t *testing.T) {
	tests := []struct {
		hour int
		want TimeOfDay
	}{
		{0, Night},
		{4, Night},
		{5, Dawn},
		{6, Dawn},
		{7, Morning},
		{11, Morning},
		{12, Afternoon},
		{16, Afternoon},
		{17, Dusk},
		{18, Dusk},
		{19, Evening},
		{21, Evening},
		{22, Night},
		{23, Night},
	}

	for _, tt := range tests {
		c := New(WithStartMinutes(float64(tt.hour * 60)))
		testutil.AssertEqual(t, "time of day", c.TimeOfDay(), tt.want)
	}
}

func TestSetGameTime(t *testing.T) {
	c := New()
	c.SetGameTime(3000)

	testutil.AssertEqual(t, "game time", c.GameTime(), 3000.0)
	testutil.AssertEqual(t, "day", c.DayNumber(), 3)
	testutil.AssertEqual(t, "hour", c.Hour(), 2)
}
