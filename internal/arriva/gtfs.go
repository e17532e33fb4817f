package arriva

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"arrivatui/internal/model"
	"arrivatui/internal/telemetry"

	"github.com/jamespfennell/gtfs"
)

// GTFSCatalogue reads stops from a local GTFS static feed instead of the remote catalogue.
// Only stops with numeric ids are kept, since the search service keys stops by integer.
type GTFSCatalogue struct {
	Path string
}

func (g GTFSCatalogue) FetchStops(ctx context.Context) ([]model.Stop, error) {
	b, err := os.ReadFile(g.Path)
	if err != nil {
		return nil, fmt.Errorf("error reading GTFS data: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}
	return StopsFromGTFS(staticData.Stops), nil
}

// StopsFromGTFS converts feed stops to catalogue stops.
func StopsFromGTFS(stops []gtfs.Stop) []model.Stop {
	out := make([]model.Stop, 0, len(stops))
	skipped := 0
	for _, s := range stops {
		id, err := strconv.Atoi(s.Id)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, model.Stop{
			ID:        id,
			Name:      s.Name,
			WebName:   s.Name,
			Latitude:  copyCoord(s.Latitude),
			Longitude: copyCoord(s.Longitude),
		})
	}
	if skipped > 0 {
		telemetry.LogDebug("Skipped GTFS stops with non-numeric ids", "count", skipped)
	}
	return out
}

func copyCoord(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
