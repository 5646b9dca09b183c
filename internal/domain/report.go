package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ReportSummary is the minimal projection used for notification counting.
type ReportSummary struct {
	ID     string       `json:"_id"`
	Status ReportStatus `json:"status"`
}

// Coordinates is a map location.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UnmarshalJSON accepts numbers or numeric strings for each axis.
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var raw struct {
		Lat json.RawMessage `json:"lat"`
		Lng json.RawMessage `json:"lng"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	lat, err := parseAxis(raw.Lat)
	if err != nil {
		return fmt.Errorf("lat: %w", err)
	}
	lng, err := parseAxis(raw.Lng)
	if err != nil {
		return fmt.Errorf("lng: %w", err)
	}
	c.Lat, c.Lng = lat, lng
	return nil
}

func parseAxis(data json.RawMessage) (float64, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, err
		}
		if s == "" {
			return 0, nil
		}
		return strconv.ParseFloat(s, 64)
	}
	return strconv.ParseFloat(string(data), 64)
}

// Report is a defect report as served by the backend.
type Report struct {
	ID             string       `json:"_id"`
	Status         ReportStatus `json:"status"`
	PotholeCount   int          `json:"pothole_count"`
	Coordinates    Coordinates  `json:"coordinates"`
	Address        string       `json:"address,omitempty"`
	ImageURL       string       `json:"image_url,omitempty"`
	RepairImageURL string       `json:"repair_image_url,omitempty"`
	UserID         string       `json:"user_id,omitempty"`
	UserName       string       `json:"user_name,omitempty"`
	Municipality   string       `json:"municipality,omitempty"`
	CreatedAt      *Timestamp   `json:"created_at,omitempty"`
}

// CountResolved counts the reports whose status is Resolved.
func CountResolved(reports []ReportSummary) int {
	n := 0
	for _, r := range reports {
		if r.Status == ReportStatusResolved {
			n++
		}
	}
	return n
}

// ReportTotals holds pending/resolved counts for the dashboard.
type ReportTotals struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Resolved int `json:"resolved"`
}

// Totals tallies reports by status.
func Totals(reports []Report) ReportTotals {
	t := ReportTotals{Total: len(reports)}
	for _, r := range reports {
		switch r.Status {
		case ReportStatusPending:
			t.Pending++
		case ReportStatusResolved:
			t.Resolved++
		}
	}
	return t
}
