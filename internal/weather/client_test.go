package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("start_date") != "2026-09-01" || q.Get("end_date") != "2026-09-02" {
			t.Errorf("unexpected date range %q..%q", q.Get("start_date"), q.Get("end_date"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"daily": {
				"time": ["2026-09-01", "2026-09-02"],
				"weather_code": [3, 61],
				"temperature_2m_max": [22.1, 19.4],
				"temperature_2m_min": [13.0, 12.2],
				"precipitation_sum": [0.0, 5.2],
				"wind_speed_10m_max": [12.5, 30.1]
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	forecasts, err := client.FetchDaily(context.Background(), 52.37, 4.89, "2026-09-01", "2026-09-02")
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}

	if len(forecasts) != 2 {
		t.Fatalf("got %d forecasts, want 2", len(forecasts))
	}
	first := forecasts[0]
	if first.Date != "2026-09-01" || first.WeatherCode != 3 || first.TempMaxC != 22.1 {
		t.Errorf("unexpected first forecast: %+v", first)
	}
	second := forecasts[1]
	if second.PrecipitationMM != 5.2 || second.WindSpeedMaxKMH != 30.1 {
		t.Errorf("unexpected second forecast: %+v", second)
	}
}

func TestFetchDailyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.FetchDaily(context.Background(), 0, 0, "2026-09-01", "2026-09-01"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
