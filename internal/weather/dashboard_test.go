package weather_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/clima-rs/internal/apperr"
	"github.com/neexbeast/clima-rs/internal/city"
	"github.com/neexbeast/clima-rs/internal/weather"
)

type fakeSnapshots struct {
	fail     map[string]bool
	panicOn  string
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32

	mu    sync.Mutex
	calls []string
}

func (f *fakeSnapshots) Current(ctx context.Context, name string) (*weather.Snapshot, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if name == f.panicOn {
		panic("boom")
	}
	if f.fail[name] {
		return nil, apperr.New(apperr.KindNetworkFailure, "fake", errors.New("unreachable"))
	}
	return &weather.Snapshot{CityName: name}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func names(snaps []weather.Snapshot) []string {
	out := make([]string, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, s.CityName)
	}
	return out
}

func TestDashboard_OmitsFailuresAndKeepsOrder(t *testing.T) {
	reg := city.DefaultRegistry()
	fake := &fakeSnapshots{fail: map[string]bool{"Alegrete": true, "Itaqui": true}}
	d := weather.NewDashboard(fake, reg, 4, quietLogger())

	snaps, err := d.Collect(context.Background(), city.GO3)
	require.NoError(t, err)

	var want []string
	for _, rec := range reg.InMacroRegion(city.GO3) {
		if !fake.fail[rec.Name] {
			want = append(want, rec.Name)
		}
	}
	assert.Equal(t, want, names(snaps))
	assert.Len(t, fake.calls, len(reg.InMacroRegion(city.GO3)))
}

func TestDashboard_AllCities(t *testing.T) {
	reg := city.DefaultRegistry()
	d := weather.NewDashboard(&fakeSnapshots{}, reg, 0, quietLogger())

	snaps, err := d.Collect(context.Background(), "all")
	require.NoError(t, err)
	assert.Len(t, snaps, len(reg.Cities()))
}

func TestDashboard_BoundedConcurrency(t *testing.T) {
	fake := &fakeSnapshots{delay: 10 * time.Millisecond}
	d := weather.NewDashboard(fake, city.DefaultRegistry(), 3, quietLogger())

	_, err := d.Collect(context.Background(), city.GO2)
	require.NoError(t, err)
	assert.LessOrEqual(t, fake.peak.Load(), int32(3))
	assert.Greater(t, fake.peak.Load(), int32(0))
}

func TestDashboard_PanicOmitsCity(t *testing.T) {
	reg := city.DefaultRegistry()
	fake := &fakeSnapshots{panicOn: "Santa Rosa"}
	d := weather.NewDashboard(fake, reg, 2, quietLogger())

	snaps, err := d.Collect(context.Background(), city.GO2)
	require.NoError(t, err)
	assert.NotContains(t, names(snaps), "Santa Rosa")
	assert.Len(t, snaps, len(reg.InMacroRegion(city.GO2))-1)
}

func TestDashboard_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := weather.NewDashboard(&fakeSnapshots{}, city.DefaultRegistry(), 2, quietLogger())
	_, err := d.Collect(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
