// Package climate searches locations and summarizes a year of historical
// daily data from the Open-Meteo geocoding and archive APIs.
package climate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/neexbeast/clima-rs/internal/apperr"
	"github.com/neexbeast/clima-rs/internal/upstream"
)

const (
	geocodingDefaultURL = "https://geocoding-api.open-meteo.com/v1/search"
	archiveDefaultURL   = "https://archive-api.open-meteo.com/v1/archive"
)

// Client talks to the Open-Meteo geocoding and archive endpoints. Neither
// requires a credential.
type Client struct {
	geocodingURL string
	archiveURL   string
	client       *upstream.Client
}

// NewClient constructs a Client against the production endpoints.
func NewClient(timeout time.Duration) *Client {
	return NewClientWithURLs(geocodingDefaultURL, archiveDefaultURL, timeout)
}

// NewClientWithURLs constructs a Client pointing at custom URLs (for tests).
func NewClientWithURLs(geocodingURL, archiveURL string, timeout time.Duration) *Client {
	return &Client{
		geocodingURL: geocodingURL,
		archiveURL:   archiveURL,
		client:       upstream.New("open-meteo", timeout),
	}
}

type geocodingResponse struct {
	Results []struct {
		Name        string  `json:"name"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		CountryCode string  `json:"country_code"`
		Country     string  `json:"country"`
		Timezone    string  `json:"timezone"`
		Admin1      string  `json:"admin1"`
	} `json:"results"`
}

// Search returns up to ten locations matching query. Queries shorter than two
// characters return an empty list without a request.
func (c *Client) Search(ctx context.Context, query string) ([]GeoLocation, error) {
	name := strings.TrimSpace(query)
	if utf8.RuneCountInString(name) < 2 {
		return []GeoLocation{}, nil
	}

	params := url.Values{}
	params.Set("name", name)
	params.Set("count", "10")
	params.Set("language", "pt")
	params.Set("format", "json")

	var raw geocodingResponse
	if err := c.client.GetJSON(ctx, c.geocodingURL+"?"+params.Encode(), nil, &raw); err != nil {
		return nil, fmt.Errorf("geocoding search for %q: %w", name, err)
	}

	out := make([]GeoLocation, 0, len(raw.Results))
	for _, r := range raw.Results {
		tz := r.Timezone
		if tz == "" {
			tz = "UTC"
		}
		out = append(out, GeoLocation{
			Name:        r.Name,
			Country:     r.Country,
			CountryCode: r.CountryCode,
			Admin1:      r.Admin1,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
			Timezone:    tz,
		})
	}
	return out, nil
}

type archiveResponse struct {
	Daily *struct {
		Time             []string   `json:"time"`
		TemperatureMax   []*float64 `json:"temperature_2m_max"`
		TemperatureMin   []*float64 `json:"temperature_2m_min"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

type archiveError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Archive fetches the daily samples of year at the given position. An empty
// timezone lets the archive pick one from the coordinates.
func (c *Client) Archive(ctx context.Context, lat, lon float64, timezone string, year int) ([]DailySample, error) {
	if timezone == "" {
		timezone = "auto"
	}
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("start_date", fmt.Sprintf("%d-01-01", year))
	params.Set("end_date", fmt.Sprintf("%d-12-31", year))
	params.Set("timezone", timezone)
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum")
	params.Set("temperature_unit", "celsius")
	params.Set("precipitation_unit", "mm")

	op := fmt.Sprintf("archive %d at %.4f,%.4f", year, lat, lon)

	var raw archiveResponse
	if err := c.client.GetJSON(ctx, c.archiveURL+"?"+params.Encode(), nil, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, withReason(err))
	}
	if raw.Daily == nil || raw.Daily.Time == nil {
		return nil, apperr.New(apperr.KindUpstreamError, op, errors.New("response has no daily data"))
	}

	d := raw.Daily
	samples := make([]DailySample, 0, len(d.Time))
	for i, ts := range d.Time {
		date, err := time.Parse(time.DateOnly, ts)
		if err != nil {
			return nil, apperr.New(apperr.KindUpstreamError, op, fmt.Errorf("bad date %q: %w", ts, err))
		}
		samples = append(samples, DailySample{
			Date:            date,
			TempMax:         at(d.TemperatureMax, i),
			TempMin:         at(d.TemperatureMin, i),
			PrecipitationMm: at(d.PrecipitationSum, i),
		})
	}
	return samples, nil
}

// withReason replaces the raw body of an upstream failure with the archive's
// own "reason" field when it reports one.
func withReason(err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Body == "" {
		return err
	}
	var body archiveError
	if json.Unmarshal([]byte(ae.Body), &body) != nil || !body.Error || body.Reason == "" {
		return err
	}
	return &apperr.Error{Kind: ae.Kind, Op: ae.Op, Status: ae.Status, Body: body.Reason, Err: ae.Err}
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}
