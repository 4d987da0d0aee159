package holiday_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/clima-rs/internal/apperr"
	"github.com/neexbeast/clima-rs/internal/city"
	"github.com/neexbeast/clima-rs/internal/holiday"
)

const feriadosBody = `{
	"cidade": {"ibge": 4317509, "nome": "Santo Ângelo", "uf": "RS"},
	"feriados": [
		{"data": "22/03/2026", "nome": "Aniversário de Santo Ângelo", "tipo": "MUNICIPAL"},
		{"data": "01/01/2026", "nome": "Confraternização Universal", "tipo": "NACIONAL"},
		{"data": "20/09/2026", "nome": "Revolução Farroupilha", "tipo": "ESTADUAL"},
		{"data": "17/02/2026", "nome": "Carnaval", "tipo": "FACULTATIVO"},
		{"data": "01/01/2026", "nome": "Confraternização Universal", "tipo": "NACIONAL"}
	]
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRemoteClient_Fetch(t *testing.T) {
	var gotPath, gotYear, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotYear = r.URL.Query().Get("ano")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feriadosBody))
	}))
	defer srv.Close()

	rc := holiday.NewRemoteClient(srv.URL, "token-123", time.Second)
	require.True(t, rc.Enabled())

	list, err := rc.Fetch(context.Background(), "4317509", "Santo Ângelo", 2026)
	require.NoError(t, err)

	assert.Equal(t, "/feriados/cidade/4317509", gotPath)
	assert.Equal(t, "2026", gotYear)
	assert.Equal(t, "Bearer token-123", gotAuth)

	require.Len(t, list, 4, "duplicate national row is dropped")
	assert.Equal(t, holiday.Date{Day: 1, Month: time.January}, list[0].Date)
	assert.Equal(t, holiday.National, list[0].Kind)
	assert.Equal(t, holiday.National, list[1].Kind, "optional days are reported as national")
	assert.Equal(t, holiday.Municipal, list[2].Kind)
	assert.Equal(t, "Santo Ângelo", list[2].City)
	assert.Equal(t, holiday.State, list[3].Kind)
	assert.Empty(t, list[3].City)
}

func TestRemoteClient_Disabled(t *testing.T) {
	rc := holiday.NewRemoteClient("", "  ", time.Second)
	assert.False(t, rc.Enabled())

	_, err := rc.Fetch(context.Background(), "4317509", "Santo Ângelo", 2026)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConfigurationMissing)
}

func TestRemoteClient_BadDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"feriados":[{"data":"2026-01-01","nome":"x","tipo":"NACIONAL"}]}`))
	}))
	defer srv.Close()

	rc := holiday.NewRemoteClient(srv.URL, "k", time.Second)
	_, err := rc.Fetch(context.Background(), "1", "x", 2026)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstreamError, apperr.KindOf(err))
}

func TestService_UsesRemoteWhenAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feriadosBody))
	}))
	defer srv.Close()

	svc := holiday.NewService(newCalculator(true), holiday.NewRemoteClient(srv.URL, "k", time.Second), city.DefaultRegistry(), discardLogger())

	list, src := svc.HolidaysFor(context.Background(), "Santo Ângelo", 2026)
	assert.Equal(t, holiday.SourceRemote, src)
	assert.Len(t, list, 4)
}

func TestService_FallsBackOnRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	calc := newCalculator(true)
	svc := holiday.NewService(calc, holiday.NewRemoteClient(srv.URL, "k", time.Second), city.DefaultRegistry(), discardLogger())

	list, src := svc.HolidaysFor(context.Background(), "Santo Ângelo", 2026)
	assert.Equal(t, holiday.SourceLocal, src)
	assert.Equal(t, calc.HolidaysFor("Santo Ângelo", 2026), list)
}

func TestService_LocalWhenRemoteDisabledOrCityUnknown(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(feriadosBody))
	}))
	defer srv.Close()

	disabled := holiday.NewService(newCalculator(true), holiday.NewRemoteClient(srv.URL, "", time.Second), city.DefaultRegistry(), discardLogger())
	_, src := disabled.HolidaysFor(context.Background(), "Santo Ângelo", 2026)
	assert.Equal(t, holiday.SourceLocal, src)

	enabled := holiday.NewService(newCalculator(true), holiday.NewRemoteClient(srv.URL, "k", time.Second), city.DefaultRegistry(), discardLogger())
	_, src = enabled.HolidaysFor(context.Background(), "Porto Alegre", 2026)
	assert.Equal(t, holiday.SourceLocal, src)

	assert.Zero(t, calls)
}

func TestService_HolidaysInMonthAndLookup(t *testing.T) {
	svc := holiday.NewService(newCalculator(true), nil, nil, discardLogger())

	march, src := svc.HolidaysInMonth(context.Background(), "Santo Ângelo", 2026, time.March)
	assert.Equal(t, holiday.SourceLocal, src)
	require.Len(t, march, 2)
	for _, h := range march {
		assert.Equal(t, time.March, h.Date.Month)
	}

	h, ok := svc.Lookup(context.Background(), "Santo Ângelo", time.Date(2026, time.November, 20, 12, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, holiday.State, h.Kind)

	_, ok = svc.Lookup(context.Background(), "Santo Ângelo", time.Date(2026, time.November, 21, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}
