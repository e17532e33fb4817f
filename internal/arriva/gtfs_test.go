package arriva

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jamespfennell/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopsFromGTFS(t *testing.T) {
	lat, lon := 42.87, -8.54
	stops := StopsFromGTFS([]gtfs.Stop{
		{Id: "5274", Name: "Santiago de Compostela", Latitude: &lat, Longitude: &lon},
		{Id: "par_4802", Name: "A Coruña"},
		{Id: "1234", Name: "Lugo"},
	})

	require.Len(t, stops, 2)
	assert.Equal(t, 5274, stops[0].ID)
	require.NotNil(t, stops[0].Latitude)
	assert.Equal(t, 42.87, *stops[0].Latitude)
	assert.Nil(t, stops[0].Lat)

	lat = 0
	assert.Equal(t, 42.87, *stops[0].Latitude, "coordinates are copied")

	assert.Equal(t, 1234, stops[1].ID)
	assert.Nil(t, stops[1].Latitude)
}

func TestGTFSCatalogue_MissingFile(t *testing.T) {
	_, err := GTFSCatalogue{Path: filepath.Join(t.TempDir(), "missing.zip")}.FetchStops(context.Background())
	assert.Error(t, err)
}
