// Package weather provides a read-only daily forecast endpoint backed by an
// external open-meteo style API with a Redis cache in front of it.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DayForecast is a single day of forecast data.
type DayForecast struct {
	Date            string  `json:"date"`
	WeatherCode     int     `json:"weatherCode"`
	TempMaxC        float64 `json:"tempMaxC"`
	TempMinC        float64 `json:"tempMinC"`
	PrecipitationMM float64 `json:"precipitationMm"`
	WindSpeedMaxKMH float64 `json:"windSpeedMaxKmh"`
}

// Client calls the external weather API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a weather API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type dailyResponse struct {
	Daily struct {
		Time             []string  `json:"time"`
		WeatherCode      []int     `json:"weather_code"`
		TemperatureMax   []float64 `json:"temperature_2m_max"`
		TemperatureMin   []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
		WindSpeedMax     []float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}

// FetchDaily retrieves daily forecasts for the given coordinates and
// inclusive date range (YYYY-MM-DD).
func (c *Client) FetchDaily(ctx context.Context, lat, lon float64, startDate, endDate string) ([]DayForecast, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum,wind_speed_10m_max")
	params.Set("timezone", "auto")
	params.Set("start_date", startDate)
	params.Set("end_date", endDate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/forecast?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var parsed dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	d := parsed.Daily
	forecasts := make([]DayForecast, 0, len(d.Time))
	for i, date := range d.Time {
		f := DayForecast{Date: date}
		if i < len(d.WeatherCode) {
			f.WeatherCode = d.WeatherCode[i]
		}
		if i < len(d.TemperatureMax) {
			f.TempMaxC = d.TemperatureMax[i]
		}
		if i < len(d.TemperatureMin) {
			f.TempMinC = d.TemperatureMin[i]
		}
		if i < len(d.PrecipitationSum) {
			f.PrecipitationMM = d.PrecipitationSum[i]
		}
		if i < len(d.WindSpeedMax) {
			f.WindSpeedMaxKMH = d.WindSpeedMax[i]
		}
		forecasts = append(forecasts, f)
	}
	return forecasts, nil
}
