package http

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ta9ss/weather-service/internal/catalog"
	"github.com/ta9ss/weather-service/internal/models"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func newStaticCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.NewStatic(catalog.DefaultEntries())
	if err != nil {
		t.Fatalf("NewStatic() error = %v", err)
	}
	return c
}

func newSynthesizedCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.NewSynthesized(catalog.DefaultCities())
	if err != nil {
		t.Fatalf("NewSynthesized() error = %v", err)
	}
	return c
}

// fakeCatalog returns canned results; panics when panicMsg is set.
type fakeCatalog struct {
	record   models.WeatherRecord
	err      error
	panicMsg string
}

func (f *fakeCatalog) Lookup(city string) (models.WeatherRecord, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.record, f.err
}

func (f *fakeCatalog) Mode() catalog.Mode { return catalog.ModeStatic }

func (f *fakeCatalog) Cities() []string { return []string{"tunis"} }

var errLookupBroken = errors.New("lookup broken")

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

type failingSink struct{}

func (failingSink) Write(p []byte) (int, error) { return 0, errors.New("sink unavailable") }

func (failingSink) Sync() error { return errors.New("sink unavailable") }

// panicCore accepts every entry and panics on write.
type panicCore struct {
	zapcore.Core
}

func (c panicCore) Enabled(zapcore.Level) bool { return true }

func (c panicCore) With([]zapcore.Field) zapcore.Core { return c }

func (c panicCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return ce.AddCore(e, c)
}

func (c panicCore) Write(zapcore.Entry, []zapcore.Field) error {
	panic("log sink down")
}
