package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeocoder struct {
	coords Coordinates
	err    error
	got    string
}

func (f *fakeGeocoder) Geocode(_ context.Context, place string) (Coordinates, error) {
	f.got = place
	return f.coords, f.err
}

type fakeZones struct {
	zone string
	err  error
}

func (f fakeZones) ZoneAt(Coordinates) (string, error) { return f.zone, f.err }

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func TestTimeAndDate(t *testing.T) {
	tests := []struct {
		at       time.Time
		wantTime string
		wantDate string
	}{
		{time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC), "02:07 PM", "Tuesday, March 05, 2024"},
		{time.Date(2024, 12, 25, 0, 30, 0, 0, time.UTC), "12:30 AM", "Wednesday, December 25, 2024"},
		{time.Date(2023, 7, 1, 9, 59, 0, 0, time.UTC), "09:59 AM", "Saturday, July 01, 2023"},
	}

	for _, tt := range tests {
		p := New("here", "sunny", &fakeGeocoder{}, fakeZones{}, fixedClock(tt.at))
		assert.Equal(t, tt.wantTime, p.Time())
		assert.Equal(t, tt.wantDate, p.Date())
	}
}

func TestStaticProbes(t *testing.T) {
	p := New("mulavoor, ernakulam, kerala", "The weather is sunny with a temperature of 25°C.", &fakeGeocoder{}, fakeZones{})
	assert.Equal(t, "mulavoor, ernakulam, kerala", p.Location())
	assert.Equal(t, "The weather is sunny with a temperature of 25°C.", p.Weather())
}

func TestTimezone(t *testing.T) {
	geo := &fakeGeocoder{coords: Coordinates{Lat: 10.0, Lng: 76.5}}
	p := New("mulavoor", "", geo, fakeZones{zone: "Asia/Kolkata"})

	assert.Equal(t, "Asia/Kolkata", p.Timezone(context.Background()))
	assert.Equal(t, "mulavoor", geo.got)
}

func TestTimezoneDegrades(t *testing.T) {
	tests := []struct {
		name  string
		geo   *fakeGeocoder
		zones fakeZones
	}{
		{"geocoder error", &fakeGeocoder{err: errors.New("no network")}, fakeZones{zone: "Asia/Kolkata"}},
		{"not found", &fakeGeocoder{err: ErrLocationNotFound}, fakeZones{zone: "Asia/Kolkata"}},
		{"no zone", &fakeGeocoder{}, fakeZones{err: ErrNoZone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New("somewhere", "", tt.geo, tt.zones)
			assert.Equal(t, "unknown timezone", p.Timezone(context.Background()))
		})
	}
}

func TestLatLong(t *testing.T) {
	zone, err := LatLong{}.ZoneAt(Coordinates{Lat: 40.7128, Lng: -74.0060})
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", zone)
}

func TestNominatim(t *testing.T) {
	var gotUA, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"place_id":1,"lat":"9.9816358","lon":"76.5734951","display_name":"Mulavoor"}]`))
	}))
	defer srv.Close()

	n := &Nominatim{BaseURL: srv.URL, UserAgent: "voice_assistant", Client: srv.Client()}
	c, err := n.Geocode(context.Background(), "mulavoor, ernakulam, kerala")
	require.NoError(t, err)

	assert.InDelta(t, 9.9816358, c.Lat, 1e-9)
	assert.InDelta(t, 76.5734951, c.Lng, 1e-9)
	assert.Equal(t, "voice_assistant", gotUA)
	assert.Equal(t, "mulavoor, ernakulam, kerala", gotQuery)
}

func TestNominatimFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		is     error
	}{
		{"empty result", http.StatusOK, `[]`, ErrLocationNotFound},
		{"server error", http.StatusBadGateway, `oops`, nil},
		{"malformed", http.StatusOK, `[{"lat":`, nil},
		{"missing coordinates", http.StatusOK, `[{"display_name":"x"}]`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			n := &Nominatim{BaseURL: srv.URL, UserAgent: "test", Client: srv.Client()}
			_, err := n.Geocode(context.Background(), "atlantis")
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestTimezoneThroughNominatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	p := New("atlantis", "", &Nominatim{BaseURL: srv.URL, Client: srv.Client()}, LatLong{})
	assert.Equal(t, UnknownTimezone, p.Timezone(context.Background()))
}
