package catalog

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/ta9ss/weather-service/internal/models"
)

// Mode selects how a Catalog produces weather records.
type Mode string

const (
	// ModeStatic serves fixed entries from a table.
	ModeStatic Mode = "static"
	// ModeSynthesized generates random values for a whitelist of cities.
	ModeSynthesized Mode = "synthesized"
)

// Bounds for synthesized records, inclusive.
const (
	MinTemperature = 15
	MaxTemperature = 35
	MinHumidity    = 40
	MaxHumidity    = 90
)

// Entry is one row of the static table.
type Entry struct {
	Temperature int    `yaml:"temp"`
	Condition   string `yaml:"condition"`
}

// DefaultEntries is the built-in static table.
func DefaultEntries() map[string]Entry {
	return map[string]Entry{
		"tunis":    {Temperature: 25, Condition: "Sunny"},
		"sfax":     {Temperature: 22, Condition: "Windy"},
		"kairouan": {Temperature: 30, Condition: "Hot"},
	}
}

// DefaultCities is the built-in whitelist for synthesized mode.
func DefaultCities() []string {
	return []string{"tunis", "sfax", "kairouan"}
}

// Source yields uniform integers in [0, n). Implementations must be safe for
// concurrent use; *rand.Rand is not, so wrap it when injecting one.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Option configures a Catalog.
type Option func(*Catalog)

// WithSource replaces the random source used in synthesized mode.
func WithSource(src Source) Option {
	return func(c *Catalog) {
		if src != nil {
			c.source = src
		}
	}
}

// WithClock replaces the clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

// Catalog maps supported city names to weather records. It is immutable after
// construction and safe for concurrent use.
type Catalog struct {
	mode    Mode
	entries map[string]Entry
	cities  []string
	source  Source
	now     func() time.Time
}

// New builds a catalog for mode. entries is used in static mode, cities in synthesized mode.
func New(mode Mode, entries map[string]Entry, cities []string, opts ...Option) (*Catalog, error) {
	switch mode {
	case ModeStatic:
		return NewStatic(entries, opts...)
	case ModeSynthesized:
		return NewSynthesized(cities, opts...)
	default:
		return nil, fmt.Errorf("catalog: unknown mode %q", mode)
	}
}

// NewStatic builds a static-mode catalog. Keys are lowercased; two keys that
// collide after lowercasing are rejected.
func NewStatic(entries map[string]Entry, opts ...Option) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog: static mode requires at least one entry")
	}
	normalized := make(map[string]Entry, len(entries))
	for name, e := range entries {
		key, err := canonical(name)
		if err != nil {
			return nil, err
		}
		if _, dup := normalized[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate city %q", key)
		}
		normalized[key] = e
	}
	return build(ModeStatic, normalized, opts), nil
}

// NewSynthesized builds a synthesized-mode catalog for the given whitelist.
func NewSynthesized(cities []string, opts ...Option) (*Catalog, error) {
	if len(cities) == 0 {
		return nil, fmt.Errorf("catalog: synthesized mode requires at least one city")
	}
	normalized := make(map[string]Entry, len(cities))
	for _, name := range cities {
		key, err := canonical(name)
		if err != nil {
			return nil, err
		}
		if _, dup := normalized[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate city %q", key)
		}
		normalized[key] = Entry{}
	}
	return build(ModeSynthesized, normalized, opts), nil
}

func build(mode Mode, entries map[string]Entry, opts []Option) *Catalog {
	c := &Catalog{
		mode:    mode,
		entries: entries,
		source:  globalSource{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cities = make([]string, 0, len(entries))
	for name := range entries {
		c.cities = append(c.cities, name)
	}
	sort.Strings(c.cities)
	return c
}

func canonical(name string) (string, error) {
	key := Normalize(strings.TrimSpace(name))
	if key == "" {
		return "", fmt.Errorf("catalog: empty city name")
	}
	return key, nil
}

// Normalize returns the lookup key for a city as received on the path.
func Normalize(city string) string {
	return strings.ToLower(city)
}

// Mode returns the catalog mode.
func (c *Catalog) Mode() Mode {
	return c.mode
}

// Cities returns the sorted whitelist.
func (c *Catalog) Cities() []string {
	out := make([]string, len(c.cities))
	copy(out, c.cities)
	return out
}

// Supports reports whether city is in the whitelist, ignoring case.
func (c *Catalog) Supports(city string) bool {
	_, ok := c.entries[Normalize(city)]
	return ok
}

// Lookup returns the weather record for city. Unsupported cities yield a
// *NotFoundError carrying the name as given.
func (c *Catalog) Lookup(city string) (models.WeatherRecord, error) {
	key := Normalize(city)
	entry, ok := c.entries[key]
	if !ok {
		return models.WeatherRecord{}, &NotFoundError{City: city}
	}

	rec := models.WeatherRecord{
		City:      key,
		Timestamp: c.now(),
	}
	switch c.mode {
	case ModeSynthesized:
		rec.Temperature = c.between(MinTemperature, MaxTemperature)
		rec.Humidity = c.between(MinHumidity, MaxHumidity)
	default:
		rec.Temperature = entry.Temperature
		rec.Condition = entry.Condition
	}
	return rec, nil
}

// between draws uniformly from [lo, hi].
func (c *Catalog) between(lo, hi int) int {
	return lo + c.source.IntN(hi-lo+1)
}
