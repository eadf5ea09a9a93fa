// Package forecasts turns Open-Meteo conditions into the daily weather report
// 小灰 sends in the morning and on /weather.
package forecasts

import (
	"fmt"
	"strings"

	"smokebuddy/internal/types"
)

// WeatherFailureText is sent whenever conditions cannot be fetched.
const WeatherFailureText = "小灰看不到窗外的天氣，等一下再問我一次好嗎？喵～"

// Report is the plain data object rendered by FormatReport.
type Report struct {
	Location   string
	Conditions types.WeatherConditions
}

// aqiLevel buckets a US AQI value into the wording used in the report.
func aqiLevel(aqi int) string {
	switch {
	case aqi <= 50:
		return "良好"
	case aqi <= 100:
		return "普通"
	case aqi <= 150:
		return "對敏感族群不健康"
	case aqi <= 200:
		return "不健康"
	case aqi <= 300:
		return "非常不健康"
	default:
		return "危害"
	}
}

// FormatReport renders r as the multi-line report text.
func FormatReport(r Report) string {
	c := r.Conditions
	var b strings.Builder

	location := r.Location
	if location == "" {
		location = "這裡"
	}
	fmt.Fprintf(&b, "🌤 %s今天的天氣\n", location)
	fmt.Fprintf(&b, "現在氣溫：%.1f°C\n", c.Temperature)
	fmt.Fprintf(&b, "最高／最低：%.1f°C／%.1f°C\n", c.TemperatureMax, c.TemperatureMin)
	fmt.Fprintf(&b, "降雨機率：%d%%\n", c.PrecipitationProbability)
	fmt.Fprintf(&b, "PM2.5：%.1f μg/m³\n", c.PM25)
	fmt.Fprintf(&b, "空氣品質指數：%d（%s）\n", c.AQI, aqiLevel(c.AQI))
	b.WriteString(advice(c))
	return b.String()
}

// advice picks the closing line from the most pressing condition.
func advice(c types.WeatherConditions) string {
	switch {
	case c.AQI > 100:
		return "空氣不太好，出門記得戴口罩，也少抽一根吧～"
	case c.PrecipitationProbability >= 50:
		return "可能會下雨，記得帶傘喔～"
	case c.TemperatureMin < 15:
		return "今天有點冷，多穿一件外套～"
	case c.TemperatureMax >= 32:
		return "今天很熱，記得多喝水～"
	default:
		return "是個好天氣，小灰陪你一起加油～"
	}
}
