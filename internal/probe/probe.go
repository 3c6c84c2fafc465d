// Package probe answers the environment questions: clock, calendar,
// where the user is, the weather and the local timezone.
//
// Location and weather are static values from configuration. Nothing
// is sensed; the timezone is derived from the static location.
package probe

import (
	"context"
	log "log/slog"
	"time"
)

const UnknownTimezone = "unknown timezone"

const (
	timeLayout = "03:04 PM"
	dateLayout = "Monday, January 02, 2006"
)

type Geocoder interface {
	Geocode(ctx context.Context, place string) (Coordinates, error)
}

type ZoneFinder interface {
	ZoneAt(c Coordinates) (string, error)
}

type Probes struct {
	location string
	weather  string
	geocoder Geocoder
	zones    ZoneFinder
	now      func() time.Time
}

type Option func(*Probes)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Probes) { p.now = now }
}

func New(location, weather string, geocoder Geocoder, zones ZoneFinder, opts ...Option) *Probes {
	p := &Probes{
		location: location,
		weather:  weather,
		geocoder: geocoder,
		zones:    zones,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Probes) Time() string {
	return p.now().Format(timeLayout)
}

func (p *Probes) Date() string {
	return p.now().Format(dateLayout)
}

func (p *Probes) Location() string {
	return p.location
}

func (p *Probes) Weather() string {
	return p.weather
}

// Timezone never fails: any lookup problem yields UnknownTimezone.
func (p *Probes) Timezone(ctx context.Context) string {
	coords, err := p.geocoder.Geocode(ctx, p.location)
	if err != nil {
		log.Error("Failed to geocode location", "location", p.location, "err", err)
		return UnknownTimezone
	}

	zone, err := p.zones.ZoneAt(coords)
	if err != nil {
		log.Error("Failed to resolve timezone", "lat", coords.Lat, "lng", coords.Lng, "err", err)
		return UnknownTimezone
	}

	log.Debug("Resolved timezone", "location", p.location, "zone", zone)
	return zone
}
