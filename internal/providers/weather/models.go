// internal/providers/weather/models.go
package weather

// forecastResponse mirrors the weather backend's forecast.json payload.
type forecastResponse struct {
	Location locationData `json:"location"`
	Forecast struct {
		ForecastDay []forecastDay `json:"forecastday"`
	} `json:"forecast"`
}

type locationData struct {
	Name    string `json:"name"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

type forecastDay struct {
	Date string `json:"date"`
	Day  struct {
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
		MaxTempC      float64 `json:"maxtemp_c"`
		MinTempC      float64 `json:"mintemp_c"`
		TotalPrecipMM float64 `json:"totalprecip_mm"`
	} `json:"day"`
}
