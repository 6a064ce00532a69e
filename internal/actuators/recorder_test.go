package actuators

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecorder_TracksState(t *testing.T) {
	r := NewRecorder()

	require.NoError(t, r.Fan(true))
	require.NoError(t, r.Indicator(ColorBlue, true))
	require.NoError(t, r.Buzzer(true))
	require.NoError(t, r.Louvre(45))

	require.True(t, r.FanOn())
	require.True(t, r.Lit(ColorBlue))
	require.False(t, r.Lit(ColorRed))
	require.True(t, r.BuzzerOn())
	require.Equal(t, 45, r.Angle())
	require.True(t, r.Attached())

	require.NoError(t, r.Fan(false))
	require.NoError(t, r.DetachLouvre())
	require.False(t, r.FanOn())
	require.False(t, r.Attached())
}

func TestRecorder_JournalOrderAndCount(t *testing.T) {
	r := NewRecorder()

	require.NoError(t, r.Indicator(ColorGreen, true))
	require.NoError(t, r.Indicator(ColorGreen, false))
	require.NoError(t, r.Louvre(20))
	require.NoError(t, r.Louvre(21))
	require.NoError(t, r.DetachLouvre())

	require.Equal(t, []string{
		"green on",
		"green off",
		"louvre 20",
		"louvre 21",
		"louvre detach",
	}, r.Journal())

	require.Equal(t, 2, r.Count("green"))
	require.Equal(t, 3, r.Count("louvre"))
	require.Equal(t, 1, r.Count("louvre detach"))

	r.Reset()
	require.Empty(t, r.Journal())
}

func TestRecorder_ErrBlocksStateChange(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.Fan(true))

	boom := errors.New("relay stuck")
	r.SetErr(boom)
	require.ErrorIs(t, r.Fan(false), boom)
	require.ErrorIs(t, r.Buzzer(true), boom)
	require.True(t, r.FanOn(), "failed command must not change state")

	r.SetErr(nil)
	require.NoError(t, r.Fan(false))
	require.False(t, r.FanOn())
}
