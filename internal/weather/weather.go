// Package weather fetches current conditions for the station. Providers are
// abstracted behind a small interface so the station loop never depends on a
// concrete API.
package weather

import (
	"context"
	"time"
)

// Location is a latitude/longitude pair in decimal degrees.
type Location struct {
	Lat float64
	Lon float64
}

// Observation is the normalized view the renderer consumes: rounded current
// temperature, rounded daily maximum, a localized summary line and the
// provider's condition code.
type Observation struct {
	Temperature    int
	TemperatureMax int
	Summary        string
	Icon           string
	FetchedAt      time.Time
}

// Provider abstracts a weather data source.
type Provider interface {
	Name() string
	Current(ctx context.Context, loc Location) (Observation, error)
}
