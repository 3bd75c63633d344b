package catalog

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqSource replays a fixed sequence of offsets, clamped to n-1.
type seqSource struct {
	mu   sync.Mutex
	vals []int
	i    int
}

func (s *seqSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.vals[s.i%len(s.vals)]
	s.i++
	if v >= n {
		return n - 1
	}
	return v
}

var fixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func TestNewStatic_LookupCaseInsensitive(t *testing.T) {
	c, err := NewStatic(DefaultEntries(), WithClock(fixedClock))
	require.NoError(t, err)

	for _, in := range []string{"tunis", "TUNIS", "TuNiS"} {
		rec, err := c.Lookup(in)
		require.NoError(t, err, in)
		assert.Equal(t, "tunis", rec.City)
		assert.Equal(t, 25, rec.Temperature)
		assert.Equal(t, "Sunny", rec.Condition)
		assert.Zero(t, rec.Humidity)
		assert.Equal(t, fixedTime, rec.Timestamp)
	}
}

func TestLookup_UnsupportedCity(t *testing.T) {
	c, err := NewStatic(DefaultEntries())
	require.NoError(t, err)

	_, err = c.Lookup("Atlantis")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCityNotSupported))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Atlantis", nf.City)
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestLookup_DoesNotTrim(t *testing.T) {
	c, err := NewStatic(DefaultEntries())
	require.NoError(t, err)

	_, err = c.Lookup(" tunis")
	assert.ErrorIs(t, err, ErrCityNotSupported)
	assert.False(t, c.Supports(""))
}

func TestNewSynthesized_Bounds(t *testing.T) {
	c, err := NewSynthesized(DefaultCities())
	require.NoError(t, err)

	for i := 0; i < 2000; i++ {
		rec, err := c.Lookup("sfax")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rec.Temperature, MinTemperature)
		assert.LessOrEqual(t, rec.Temperature, MaxTemperature)
		assert.GreaterOrEqual(t, rec.Humidity, MinHumidity)
		assert.LessOrEqual(t, rec.Humidity, MaxHumidity)
		assert.Empty(t, rec.Condition)
	}
}

func TestNewSynthesized_DeterministicSource(t *testing.T) {
	// Offsets 0 and 50 hit both ends of each range after clamping.
	src := &seqSource{vals: []int{0, 0, 50, 50}}
	c, err := NewSynthesized([]string{"Tunis"}, WithSource(src), WithClock(fixedClock))
	require.NoError(t, err)

	rec, err := c.Lookup("tunis")
	require.NoError(t, err)
	assert.Equal(t, MinTemperature, rec.Temperature)
	assert.Equal(t, MinHumidity, rec.Humidity)

	rec, err = c.Lookup("TUNIS")
	require.NoError(t, err)
	assert.Equal(t, MaxTemperature, rec.Temperature)
	assert.Equal(t, MaxHumidity, rec.Humidity)
	assert.Equal(t, "tunis", rec.City)
}

func TestNew_ModeSelection(t *testing.T) {
	static, err := New(ModeStatic, DefaultEntries(), nil)
	require.NoError(t, err)
	assert.Equal(t, ModeStatic, static.Mode())

	synth, err := New(ModeSynthesized, nil, DefaultCities())
	require.NoError(t, err)
	assert.Equal(t, ModeSynthesized, synth.Mode())

	_, err = New(Mode("remote"), nil, nil)
	assert.Error(t, err)
}

func TestNew_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]Entry
		cities  []string
		mode    Mode
	}{
		{"empty static", nil, nil, ModeStatic},
		{"empty synthesized", nil, nil, ModeSynthesized},
		{"blank name", map[string]Entry{"  ": {}}, nil, ModeStatic},
		{"case duplicate", map[string]Entry{"Tunis": {}, "tunis": {}}, nil, ModeStatic},
		{"synthesized duplicate", nil, []string{"sfax", "SFAX"}, ModeSynthesized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.mode, tc.entries, tc.cities)
			assert.Error(t, err)
		})
	}
}

func TestCities_SortedCopy(t *testing.T) {
	c, err := NewSynthesized([]string{"Sfax", "kairouan", "TUNIS"})
	require.NoError(t, err)

	cities := c.Cities()
	assert.Equal(t, []string{"kairouan", "sfax", "tunis"}, cities)

	cities[0] = "mutated"
	assert.True(t, c.Supports("kairouan"))
	assert.Equal(t, "kairouan", c.Cities()[0])
}

func TestNewStatic_CopiesInput(t *testing.T) {
	entries := map[string]Entry{"tunis": {Temperature: 25, Condition: "Sunny"}}
	c, err := NewStatic(entries)
	require.NoError(t, err)

	entries["atlantis"] = Entry{}
	assert.False(t, c.Supports("atlantis"))
}

func TestLookup_ConcurrentSafe(t *testing.T) {
	c, err := NewSynthesized(DefaultCities())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := c.Lookup("kairouan"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
