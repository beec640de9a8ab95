package route

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"github.com/routelens/routelens/internal/model"
)

// ErrNoCoordinates is returned when a CSV contains no valid coordinate rows.
var ErrNoCoordinates = errors.New("no valid coordinates found in CSV")

// ParseCSV reads route coordinates from CSV data. Each row's first two
// columns are read as latitude and longitude in decimal degrees.
//
// Rows are validated individually: malformed rows, header rows, and
// out-of-range coordinates are skipped rather than failing the parse, so a
// CSV exported with a header line or stray blank rows still loads. Only a
// file that yields zero valid points is an error.
func ParseCSV(r io.Reader) ([]model.Point, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows may carry trailing columns

	points := make([]model.Point, 0, 256)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Structurally broken row; skip like any malformed row.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, err
		}
		if len(record) < 2 {
			continue
		}

		lat, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}

		p := model.Point{Lat: lat, Lng: lng}
		if !p.Valid() {
			continue
		}
		points = append(points, p)
	}

	if len(points) == 0 {
		return nil, ErrNoCoordinates
	}
	return points, nil
}
