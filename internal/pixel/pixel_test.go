package pixel

import (
	"errors"
	"testing"
	"time"

	"github.com/juju/loggo"
	"github.com/stretchr/testify/require"
)

var errDev = errors.New("spi write failed")

// fakeDev records every frame pushed to it and can fail a chosen
// write to exercise the error path.
type fakeDev struct {
	frames [][]byte
	writes int
	failAt int // fail the n-th Write call, 1-based, 0 never
	halts  int
}

func (f *fakeDev) Write(p []byte) (int, error) {
	f.writes++
	if f.failAt != 0 && f.writes == f.failAt {
		return 0, errDev
	}
	frame := make([]byte, len(p))
	copy(frame, p)
	f.frames = append(f.frames, frame)
	return len(p), nil
}

func (f *fakeDev) Halt() error {
	f.halts++
	return nil
}

func shortPattern() Pattern {
	return Pattern{
		Duration:        60 * time.Millisecond,
		FlashesPerGroup: 3,
		OnTime:          5 * time.Millisecond,
		OffTime:         3 * time.Millisecond,
		GroupPause:      10 * time.Millisecond,
		Color:           Red,
	}
}

func black() []byte {
	return make([]byte, NumPixels*channels)
}

// redFrame is Red with the fixed brightness applied to every pixel.
func redFrame() []byte {
	frame := make([]byte, NumPixels*channels)
	for i := 0; i < len(frame); i += channels {
		frame[i] = byte(float64(255) * Brightness)
	}
	return frame
}

func TestSetupIdempotent(t *testing.T) {
	f := &fakeDev{}
	s := NewWithDevice(f)

	require.NoError(t, s.Setup())
	require.NoError(t, s.Setup())

	// one configure side effect: the stick blanked, once
	require.Equal(t, 1, f.writes)
	require.Equal(t, [][]byte{black()}, f.frames)
}

func TestAlarmPatternShape(t *testing.T) {
	f := &fakeDev{}
	s := NewWithDevice(f)
	p := shortPattern()

	require.NoError(t, s.Alarm(p))

	// setup blank, alternating color/black flash pairs, forced blank
	require.GreaterOrEqual(t, len(f.frames), 2+2*p.FlashesPerGroup)
	require.Equal(t, black(), f.frames[0])
	require.Equal(t, black(), f.frames[len(f.frames)-1])

	flashes := f.frames[1 : len(f.frames)-1]
	require.Zero(t, len(flashes)%(2*p.FlashesPerGroup))
	for i, frame := range flashes {
		if i%2 == 0 {
			require.Equal(t, redFrame(), frame, "frame %d", i+1)
		} else {
			require.Equal(t, black(), frame, "frame %d", i+1)
		}
	}
}

func TestAlarmForcesBlackOnError(t *testing.T) {
	f := &fakeDev{failAt: 4}
	s := NewWithDevice(f)

	err := s.Alarm(shortPattern())
	require.ErrorIs(t, err, errDev)

	// the failure propagates but the stick still ends up dark
	require.Equal(t, black(), f.frames[len(f.frames)-1])
}

func TestAlarmDurationBounds(t *testing.T) {
	f := &fakeDev{}
	s := NewWithDevice(f)
	p := shortPattern()

	start := time.Now()
	require.NoError(t, s.Alarm(p))
	elapsed := time.Since(start)

	group := time.Duration(p.FlashesPerGroup)*(p.OnTime+p.OffTime) + p.GroupPause
	require.GreaterOrEqual(t, elapsed, p.Duration)
	require.Less(t, elapsed, p.Duration+group+150*time.Millisecond)
}

func TestAlarmRejectsDegeneratePatterns(t *testing.T) {
	for _, p := range []Pattern{
		{Duration: 0, FlashesPerGroup: 3, Color: Red},
		{Duration: -time.Second, FlashesPerGroup: 3, Color: Red},
		{Duration: time.Second, FlashesPerGroup: 0, Color: Red},
	} {
		f := &fakeDev{}
		s := NewWithDevice(f)

		start := time.Now()
		require.NoError(t, s.Alarm(p))
		require.Less(t, time.Since(start), 100*time.Millisecond)

		// only the setup blank, and the stick is dark
		require.Equal(t, [][]byte{black()}, f.frames)
	}
}

func TestMockAlarmIsNoop(t *testing.T) {
	tw := &loggo.TestWriter{}
	require.NoError(t, loggo.RegisterWriter("pixel-test", tw))
	defer func() { _, _ = loggo.RemoveWriter("pixel-test") }()

	s := &Strip{mock: true}
	p := DefaultPattern
	p.Duration = 5 * time.Second

	start := time.Now()
	require.NoError(t, s.Alarm(p))
	require.Less(t, time.Since(start), 100*time.Millisecond)

	log := tw.Log()
	require.Len(t, log, 1)
	require.Equal(t, loggo.WARNING, log[0].Level)
	require.Contains(t, log[0].Message, "doing nothing")
}

func TestCleanupSafety(t *testing.T) {
	// before any init, and repeatedly
	s := &Strip{mock: true}
	s.Cleanup()
	s.Cleanup()

	// after an alarm the stick stays usable, only blanked
	f := &fakeDev{}
	s = NewWithDevice(f)
	require.NoError(t, s.Alarm(shortPattern()))

	s.Cleanup()
	s.Cleanup()
	require.Equal(t, black(), f.frames[len(f.frames)-1])
	require.Zero(t, f.halts)
	require.True(t, s.ready)
}
