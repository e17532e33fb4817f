package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Stop is a named transit location from the stop catalogue.
type Stop struct {
	ID      int    `json:"parada"`
	Name    string `json:"nombre"`
	WebName string `json:"nom_web"`
	Weight  int    `json:"peso"`

	// The catalogue carries two coordinate pairs, either of which may be null.
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Latitude  *float64 `json:"latitud"`
	Longitude *float64 `json:"longitud"`
}

// Equal reports whether two stops match field by field.
func (s Stop) Equal(o Stop) bool {
	return s.ID == o.ID &&
		s.Name == o.Name &&
		s.WebName == o.WebName &&
		s.Weight == o.Weight &&
		sameCoord(s.Lat, o.Lat) &&
		sameCoord(s.Lon, o.Lon) &&
		sameCoord(s.Latitude, o.Latitude) &&
		sameCoord(s.Longitude, o.Longitude)
}

// DisplayName prefers the web name, which the service keeps properly cased.
func (s Stop) DisplayName() string {
	if s.WebName != "" {
		return s.WebName
	}
	return s.Name
}

func (s Stop) String() string {
	return fmt.Sprintf("%d - %s", s.ID, s.DisplayName())
}

// Position returns the first complete coordinate pair, if any.
func (s Stop) Position() (lat, lon float64, ok bool) {
	if s.Latitude != nil && s.Longitude != nil {
		return *s.Latitude, *s.Longitude, true
	}
	if s.Lat != nil && s.Lon != nil {
		return *s.Lat, *s.Lon, true
	}
	return 0, 0, false
}

func sameCoord(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// FormatCoord renders an optional coordinate, "None" when absent.
func FormatCoord(v *float64) string {
	if v == nil {
		return "None"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

type catalogue struct {
	Stops []Stop `json:"paradas"`
}

// DecodeCatalogue decodes the stop catalogue document ({"paradas": [...]}).
func DecodeCatalogue(data []byte) ([]Stop, error) {
	var c catalogue
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode stop catalogue: %w", err)
	}
	if c.Stops == nil {
		return nil, fmt.Errorf("stop catalogue has no %q list", "paradas")
	}
	return c.Stops, nil
}
