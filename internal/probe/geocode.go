package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

var ErrLocationNotFound = errors.New("location not found")

type Coordinates struct {
	Lat float64
	Lng float64
}

// Nominatim geocodes free-text places against an OpenStreetMap
// Nominatim instance.
type Nominatim struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

func (n *Nominatim) Geocode(ctx context.Context, place string) (Coordinates, error) {
	q := url.Values{}
	q.Set("q", place)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.BaseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return Coordinates{}, err
	}
	req.Header.Set("User-Agent", n.UserAgent)
	req.Header.Set("Accept", "application/json")

	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode read: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return Coordinates{}, fmt.Errorf("geocode: unexpected status %s", resp.Status)
	}
	if !gjson.ValidBytes(body) {
		return Coordinates{}, fmt.Errorf("geocode: malformed response")
	}

	first := gjson.GetBytes(body, "0")
	if !first.Exists() {
		return Coordinates{}, fmt.Errorf("%w: %q", ErrLocationNotFound, place)
	}

	lat, lon := first.Get("lat"), first.Get("lon")
	if !lat.Exists() || !lon.Exists() {
		return Coordinates{}, fmt.Errorf("geocode: result without coordinates")
	}

	return Coordinates{Lat: lat.Float(), Lng: lon.Float()}, nil
}
