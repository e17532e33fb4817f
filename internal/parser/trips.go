package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "arrivatui/internal/errors"
	"arrivatui/internal/model"
	"arrivatui/internal/telemetry"
)

// Schema names the keys of a trip search response.
type Schema struct {
	Root    string
	Outward string
	Return  string

	Name      string
	Departure string
	Arrival   string
	Cost      string
}

// DefaultSchema matches the live search service.
var DefaultSchema = Schema{
	Root:      "expediciones",
	Outward:   "ida",
	Return:    "vuelta",
	Name:      "Descripcion_Web",
	Departure: "Hora_Salida",
	Arrival:   "Hora_Llegada",
	Cost:      "tarifa_basica",
}

// DecodeDocument decodes a raw response body, keeping numbers exact.
func DecodeDocument(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode trip response: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("trip response is not an object")
	}
	return doc, nil
}

// ParseTrips parses a response with DefaultSchema.
func ParseTrips(doc map[string]any) (outbound, inbound []model.Trip, err error) {
	return DefaultSchema.Parse(doc)
}

type recordResult struct {
	trip model.Trip
	err  error
}

type sideOutcome struct {
	side     model.Side
	trips    []model.Trip
	failures int
}

// Parse turns doc into the outbound and return trip sequences.
// Both sections must be present. A bad record does not stop the scan, but any
// bad record fails the whole call once both sides have been read.
func (s Schema) Parse(doc map[string]any) (outbound, inbound []model.Trip, err error) {
	root, _ := doc[s.Root].(map[string]any)

	outRecords, ok := root[s.Outward].([]any)
	if !ok {
		return nil, nil, &apperrors.MissingSectionError{Section: model.Outbound.String(), Key: s.Outward}
	}
	retRecords, ok := root[s.Return].([]any)
	if !ok {
		return nil, nil, &apperrors.MissingSectionError{Section: model.Return.String(), Key: s.Return}
	}

	out := s.parseSide(model.Outbound, outRecords)
	ret := s.parseSide(model.Return, retRecords)

	switch {
	case out.failures > 0 && ret.failures > 0:
		return nil, nil, apperrors.ErrBothSides
	case out.failures > 0:
		return nil, nil, &apperrors.SideParseError{Side: out.side, Count: out.failures}
	case ret.failures > 0:
		return nil, nil, &apperrors.SideParseError{Side: ret.side, Count: ret.failures}
	}
	return out.trips, ret.trips, nil
}

func (s Schema) parseSide(side model.Side, records []any) sideOutcome {
	outcome := sideOutcome{side: side, trips: make([]model.Trip, 0, len(records))}
	for i, raw := range records {
		res := s.parseRecord(raw)
		if res.err != nil {
			outcome.failures++
			telemetry.LogDebug("Skipping malformed trip record", "side", side.String(), "index", i, "error", res.err)
			continue
		}
		outcome.trips = append(outcome.trips, res.trip)
	}
	return outcome
}

func (s Schema) parseRecord(raw any) recordResult {
	rec, ok := raw.(map[string]any)
	if !ok {
		return recordResult{err: fmt.Errorf("record is %T, not an object", raw)}
	}

	name, err := stringField(rec, s.Name)
	if err != nil {
		return recordResult{err: err}
	}
	rawDeparture, err := stringField(rec, s.Departure)
	if err != nil {
		return recordResult{err: err}
	}
	rawArrival, err := stringField(rec, s.Arrival)
	if err != nil {
		return recordResult{err: err}
	}
	cost, err := centsField(rec, s.Cost)
	if err != nil {
		return recordResult{err: err}
	}

	departure, err := ClockTime(rawDeparture)
	if err != nil {
		return recordResult{err: fmt.Errorf("%s: %w", s.Departure, err)}
	}
	arrival, err := ClockTime(rawArrival)
	if err != nil {
		return recordResult{err: fmt.Errorf("%s: %w", s.Arrival, err)}
	}

	return recordResult{trip: model.Trip{
		Line:      name,
		Departure: departure,
		Arrival:   arrival,
		Cost:      cost,
	}}
}

// ClockTime extracts "HH:MM" from a timestamp shaped YYYY-MM-DDTHH:MM:SS±HH:MM.
// Only the characters between the 'T' and the seconds field are looked at.
func ClockTime(raw string) (string, error) {
	i := strings.IndexByte(raw, 'T')
	if i < 0 {
		return "", fmt.Errorf("timestamp %q has no date/time separator", raw)
	}
	rest := raw[i+1:]
	if len(rest) < 6 || !isDigits(rest[0:2]) || rest[2] != ':' || !isDigits(rest[3:5]) || rest[5] != ':' {
		return "", fmt.Errorf("timestamp %q has no HH:MM:SS time", raw)
	}
	return rest[:5], nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func stringField(rec map[string]any, key string) (string, error) {
	v, ok := rec[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, not a string", key, v)
	}
	return s, nil
}

func centsField(rec map[string]any, key string) (uint64, error) {
	v, ok := rec[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}

	switch n := v.(type) {
	case json.Number:
		c, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("field %q is not an unsigned integer: %s", key, n)
		}
		return c, nil
	case float64:
		if n < 0 || n != math.Trunc(n) || n > 1<<53 {
			return 0, fmt.Errorf("field %q is not an unsigned integer: %v", key, n)
		}
		return uint64(n), nil
	case int:
		if n < 0 {
			return 0, fmt.Errorf("field %q is negative: %d", key, n)
		}
		return uint64(n), nil
	case int64:
		if n < 0 {
			return 0, fmt.Errorf("field %q is negative: %d", key, n)
		}
		return uint64(n), nil
	case uint64:
		return n, nil
	default:
		return 0, fmt.Errorf("field %q is %T, not a number", key, v)
	}
}
