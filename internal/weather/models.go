package weather

// Location identifies the place a result was resolved for.
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentConditions is the normalized current-weather view.
// ObservedAt is passed through from the provider as-is.
type CurrentConditions struct {
	TemperatureC float64 `json:"temperatureC"`
	FeelsLikeC   float64 `json:"feelsLikeC"`
	WindSpeedKmh float64 `json:"windSpeedKmh"`
	Description  string  `json:"description"`
	ObservedAt   string  `json:"observedAt"`
}

// WeatherResult is the single output type every provider is normalized into.
type WeatherResult struct {
	Location Location          `json:"location"`
	Current  CurrentConditions `json:"current"`
}

// Settings holds the per-call operating mode and the provider API key.
type Settings struct {
	Synthetic bool
	APIKey    string
}

// SettingsFunc is evaluated on every Resolve call.
type SettingsFunc func() Settings

// StaticSettings returns a SettingsFunc that always yields s.
func StaticSettings(s Settings) SettingsFunc {
	return func() Settings { return s }
}
