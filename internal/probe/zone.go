package probe

import (
	"errors"

	"github.com/bradfitz/latlong"
)

var ErrNoZone = errors.New("no timezone for coordinates")

// LatLong resolves coordinates with the offline latlong shape table.
type LatLong struct{}

func (LatLong) ZoneAt(c Coordinates) (string, error) {
	name := latlong.LookupZoneName(c.Lat, c.Lng)
	if name == "" {
		return "", ErrNoZone
	}
	return name, nil
}
