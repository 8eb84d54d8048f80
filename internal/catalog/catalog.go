// Package catalog maps classifier output labels to presentation metadata
// and approximate numeric AQI values. The tables are fixed at process start
// and safe for concurrent readers.
package catalog

// The six category labels the classifier's label encoder can produce.
// Nothing else in the codebase constructs these strings ad hoc.
const (
	Good               = "Good"
	Moderate           = "Moderate"
	UnhealthySensitive = "Unhealthy for Sensitive Groups"
	Unhealthy          = "Unhealthy"
	VeryUnhealthy      = "Very Unhealthy"
	Hazardous          = "Hazardous"
)

// Labels lists the known category labels in severity order.
var Labels = []string{Good, Moderate, UnhealthySensitive, Unhealthy, VeryUnhealthy, Hazardous}

// Metadata is the presentation record for one AQI category.
type Metadata struct {
	Emoji     string `json:"emoji"`
	Color     string `json:"color"`
	Range     string `json:"range"`
	HealthTip string `json:"health_tip"`
}

var info = map[string]Metadata{
	Good: {
		Emoji:     "🟢",
		Color:     "#00E400",
		Range:     "0-50",
		HealthTip: "Air quality is excellent! Perfect for outdoor activities and exercise. 🏃‍♀️",
	},
	Moderate: {
		Emoji:     "🟡",
		Color:     "#FFFF00",
		Range:     "51-100",
		HealthTip: "Air quality is acceptable. Sensitive individuals should consider limiting prolonged outdoor exertion. 🚶‍♂️",
	},
	UnhealthySensitive: {
		Emoji:     "🟠",
		Color:     "#FF7E00",
		Range:     "101-150",
		HealthTip: "Sensitive groups should reduce outdoor activities. Children and elderly should stay indoors. 🏠",
	},
	Unhealthy: {
		Emoji:     "🔴",
		Color:     "#FF0000",
		Range:     "151-200",
		HealthTip: "Everyone should limit outdoor activities. Wear masks when going outside. 😷",
	},
	VeryUnhealthy: {
		Emoji:     "🟣",
		Color:     "#8F3F97",
		Range:     "201-300",
		HealthTip: "Health alert! Avoid outdoor activities. Keep windows closed and use air purifiers. ⚠️",
	},
	Hazardous: {
		Emoji:     "🟤",
		Color:     "#7E0023",
		Range:     "301+",
		HealthTip: "Emergency conditions! Stay indoors at all times. Seek medical attention if needed. 🚨",
	},
}

var midpoints = map[string]int{
	Good:               25,
	Moderate:           75,
	UnhealthySensitive: 125,
	Unhealthy:          175,
	VeryUnhealthy:      250,
	Hazardous:          350,
}

// Info returns the presentation metadata for a label. Unknown labels fall
// back to the Moderate entry; an unexpected decoder output degrades to a
// middle-of-the-road display instead of failing the request.
func Info(label string) Metadata {
	if m, ok := info[label]; ok {
		return m
	}
	return info[Moderate]
}

// Midpoint returns the approximate numeric AQI for a category (class
// midpoint, not a true AQI computation). Unknown labels map to 100.
func Midpoint(label string) int {
	if v, ok := midpoints[label]; ok {
		return v
	}
	return 100
}
