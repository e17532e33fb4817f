package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestDecodeCatalogue(t *testing.T) {
	data := []byte(`{"paradas":[
		{"parada":5274,"nombre":"SANTIAGO","nom_web":"Santiago de Compostela","peso":3,"lat":null,"lon":null,"latitud":42.87,"longitud":-8.54},
		{"parada":4802,"nombre":"A CORUÑA","nom_web":"A Coruña","peso":1}
	]}`)

	stops, err := DecodeCatalogue(data)
	require.NoError(t, err)
	require.Len(t, stops, 2)

	assert.Equal(t, 5274, stops[0].ID)
	assert.Nil(t, stops[0].Lat)
	assert.Nil(t, stops[0].Lon)
	require.NotNil(t, stops[0].Latitude)
	assert.Equal(t, 42.87, *stops[0].Latitude)

	assert.Nil(t, stops[1].Latitude, "absent coordinates must stay nil, not zero")
	assert.Equal(t, "A Coruña", stops[1].DisplayName())
}

func TestDecodeCatalogue_Errors(t *testing.T) {
	_, err := DecodeCatalogue([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeCatalogue([]byte(`{"stops":[]}`))
	assert.Error(t, err)
}

func TestStop_Equal(t *testing.T) {
	a := Stop{ID: 1, Name: "A", WebName: "A", Weight: 1, Latitude: ptr(1.5)}
	b := Stop{ID: 1, Name: "A", WebName: "A", Weight: 1, Latitude: ptr(1.5)}
	assert.True(t, a.Equal(b))

	b.Latitude = nil
	assert.False(t, a.Equal(b))

	c := a
	c.Name = "B"
	assert.False(t, a.Equal(c), "same id with different fields is not equal")
}

func TestStop_Position(t *testing.T) {
	_, _, ok := Stop{}.Position()
	assert.False(t, ok)

	lat, lon, ok := Stop{Lat: ptr(1), Lon: ptr(2)}.Position()
	assert.True(t, ok)
	assert.Equal(t, 1.0, lat)
	assert.Equal(t, 2.0, lon)

	assert.Equal(t, "None", FormatCoord(nil))
	assert.Equal(t, "42.5", FormatCoord(ptr(42.5)))
}

func TestTrip_Price(t *testing.T) {
	assert.Equal(t, "1.35", Trip{Cost: 135}.Price())
	assert.Equal(t, "0.05", Trip{Cost: 5}.Price())
	assert.Equal(t, "12.00", Trip{Cost: 1200}.Price())
}
