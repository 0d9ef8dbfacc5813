package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const forecastFixture = `{
	"currently": {"temperature": 21.6},
	"daily": {"data": [
		{"temperatureMax": 25.4, "summary": "Den ganzen Tag lang bewölkt.", "icon": "cloudy"}
	]}
}`

// newTestProvider points the provider at a local test server and disables
// retries so failure tests return immediately.
func newTestProvider(t *testing.T, handler http.HandlerFunc) *PirateWeather {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewPirateWeather(srv.Client(), "test-key", "si", "de")
	p.baseURL = srv.URL
	p.policy.maxRetries = 0
	return p
}

func TestCurrentParsesForecast(t *testing.T) {
	var gotPath, gotQuery string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(forecastFixture))
	})

	obs, err := p.Current(context.Background(), Location{Lat: 52.52, Lon: 13.405})
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}

	if obs.Temperature != 22 {
		t.Errorf("Temperature = %d, want 22 (rounded from 21.6)", obs.Temperature)
	}
	if obs.TemperatureMax != 25 {
		t.Errorf("TemperatureMax = %d, want 25 (rounded from 25.4)", obs.TemperatureMax)
	}
	if obs.Summary != "Den ganzen Tag lang bewölkt." {
		t.Errorf("Summary = %q", obs.Summary)
	}
	if obs.Icon != "cloudy" {
		t.Errorf("Icon = %q, want cloudy", obs.Icon)
	}
	if obs.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}

	if !strings.HasPrefix(gotPath, "/test-key/") {
		t.Errorf("request path %q missing API key segment", gotPath)
	}
	for _, part := range []string{"units=si", "lang=de", "exclude="} {
		if !strings.Contains(gotQuery, part) {
			t.Errorf("query %q missing %q", gotQuery, part)
		}
	}
}

func TestCurrentMissingTemperature(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"daily": {"data": [{"summary": "Klar", "icon": "clear-day"}]}}`))
	})

	obs, err := p.Current(context.Background(), Location{})
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if obs.Temperature != 0 || obs.TemperatureMax != 0 {
		t.Errorf("missing temperatures should default to 0, got %d/%d",
			obs.Temperature, obs.TemperatureMax)
	}
}

func TestCurrentNoDailyData(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"currently": {"temperature": 10}, "daily": {"data": []}}`))
	})

	_, err := p.Current(context.Background(), Location{})
	if err == nil || !strings.Contains(err.Error(), "no daily data") {
		t.Errorf("expected no-daily-data error, got %v", err)
	}
}

func TestCurrentServerError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := p.Current(context.Background(), Location{})
	if err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestCurrentUnexpectedStatus(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := p.Current(context.Background(), Location{})
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestCurrentContextCancelled(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(forecastFixture))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Current(ctx, Location{})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestName(t *testing.T) {
	p := NewPirateWeather(http.DefaultClient, "k", "si", "de")
	if p.Name() != "pirateweather" {
		t.Errorf("Name = %q", p.Name())
	}
}
