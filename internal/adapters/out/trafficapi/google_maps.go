// Package trafficapi holds the TrafficProvider implementations: the Google
// Distance Matrix client used in production and a simulated provider for
// local runs without an API key.
package trafficapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"delaynotify/internal/core/domain/model/delivery"
	"delaynotify/internal/core/domain/model/traffic"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	GoogleMapsProviderName = "google_maps"
	defaultGoogleBaseURL   = "https://maps.googleapis.com/maps/api"
	defaultGoogleTimeout   = 10 * time.Second
)

var ErrNoRoute = errors.New("no route between origin and destination")

type GoogleMapsConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// GoogleMaps asks the Distance Matrix API for the trip duration with and
// without current traffic. The difference is the delay.
type GoogleMaps struct {
	client *resty.Client
	apiKey string
}

func NewGoogleMaps(cfg GoogleMapsConfig) (*GoogleMaps, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("google maps api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGoogleBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGoogleTimeout
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &GoogleMaps{client: client, apiKey: cfg.APIKey}, nil
}

func (g *GoogleMaps) Name() string { return GoogleMapsProviderName }

func (g *GoogleMaps) Lookup(ctx context.Context, route delivery.Route) (traffic.Report, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"origins":        route.Origin,
			"destinations":   route.Destination,
			"departure_time": "now",
			"traffic_model":  "best_guess",
			"key":            g.apiKey,
		}).
		Get("/distancematrix/json")
	if err != nil {
		return traffic.Report{}, fmt.Errorf("distance matrix request: %w", err)
	}
	if resp.IsError() {
		return traffic.Report{}, fmt.Errorf("distance matrix returned http %d", resp.StatusCode())
	}

	return parseDistanceMatrix(resp.Body())
}

func parseDistanceMatrix(body []byte) (traffic.Report, error) {
	if !gjson.ValidBytes(body) {
		return traffic.Report{}, errors.New("distance matrix returned invalid json")
	}
	doc := gjson.ParseBytes(body)

	if status := doc.Get("status").String(); status != "OK" {
		return traffic.Report{}, fmt.Errorf("distance matrix status %s: %s", status, doc.Get("error_message").String())
	}

	element := doc.Get("rows.0.elements.0")
	switch status := element.Get("status").String(); status {
	case "OK":
	case "NOT_FOUND", "ZERO_RESULTS":
		return traffic.Report{}, fmt.Errorf("%w: %s", ErrNoRoute, status)
	default:
		return traffic.Report{}, fmt.Errorf("distance matrix element status %q", status)
	}

	base := element.Get("duration.value")
	if !base.Exists() {
		return traffic.Report{}, errors.New("distance matrix response has no duration")
	}
	inTraffic := element.Get("duration_in_traffic.value")
	if !inTraffic.Exists() {
		inTraffic = base
	}

	baseSeconds, trafficSeconds := base.Float(), inTraffic.Float()
	delayMinutes := int(math.Round((trafficSeconds - baseSeconds) / 60))

	return traffic.NewReport(delayMinutes, "", time.Duration(trafficSeconds)*time.Second, GoogleMapsProviderName)
}
