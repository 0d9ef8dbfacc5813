package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

const pirateWeatherBaseURL = "https://api.pirateweather.net/forecast"

// PirateWeather implements Provider against the Pirate Weather API. Summaries
// come back already localized via the lang parameter.
type PirateWeather struct {
	name    string
	baseURL string
	apiKey  string
	units   string
	lang    string

	client  *http.Client
	policy  retryPolicy
	circuit *gobreaker.CircuitBreaker
}

// NewPirateWeather creates the provider. units follows the API convention
// ("si", "us", ...); lang selects the summary language.
func NewPirateWeather(client *http.Client, apiKey, units, lang string) *PirateWeather {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "pirateweather",
		MaxRequests: 3,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &PirateWeather{
		name:    "pirateweather",
		baseURL: pirateWeatherBaseURL,
		apiKey:  apiKey,
		units:   units,
		lang:    lang,
		client:  client,
		policy: retryPolicy{
			maxRetries:      3,
			initialInterval: 500 * time.Millisecond,
			maxInterval:     5 * time.Second,
		},
		circuit: cb,
	}
}

func (p *PirateWeather) Name() string {
	return p.name
}

// Current fetches the forecast and reduces it to what the panel shows:
// current temperature, today's maximum, today's summary and icon code.
func (p *PirateWeather) Current(ctx context.Context, loc Location) (Observation, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("units", p.units)
		values.Set("lang", p.lang)
		values.Set("exclude", "minutely,hourly,alerts")

		u := fmt.Sprintf("%s/%s/%f,%f?%s",
			p.baseURL, p.apiKey, loc.Lat, loc.Lon, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := fetchWithResilience(ctx, p.client, p.circuit, p.policy, buildRequest)
	if err != nil {
		return Observation{}, fmt.Errorf("pirateweather fetch: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Currently struct {
			Temperature *float64 `json:"temperature"`
		} `json:"currently"`
		Daily struct {
			Data []struct {
				TemperatureMax *float64 `json:"temperatureMax"`
				Summary        string   `json:"summary"`
				Icon           string   `json:"icon"`
			} `json:"data"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Observation{}, fmt.Errorf("pirateweather decode: %w", err)
	}
	if len(payload.Daily.Data) == 0 {
		return Observation{}, fmt.Errorf("pirateweather response has no daily data")
	}

	today := payload.Daily.Data[0]

	return Observation{
		Temperature:    roundOrZero(payload.Currently.Temperature),
		TemperatureMax: roundOrZero(today.TemperatureMax),
		Summary:        today.Summary,
		Icon:           today.Icon,
		FetchedAt:      time.Now().UTC(),
	}, nil
}

func roundOrZero(v *float64) int {
	if v == nil {
		return 0
	}
	return int(math.Round(*v))
}
