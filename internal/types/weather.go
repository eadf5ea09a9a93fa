package types

// WeatherConditions is the subset of the Open-Meteo forecast and
// air-quality responses the bot reports on.
type WeatherConditions struct {
	Temperature              float64 `json:"temperature"`
	TemperatureMax           float64 `json:"temperature_max"`
	TemperatureMin           float64 `json:"temperature_min"`
	PrecipitationProbability int     `json:"precipitation_probability"`
	PM25                     float64 `json:"pm2_5"`
	AQI                      int     `json:"us_aqi"`
}
