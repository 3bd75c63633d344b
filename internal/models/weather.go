package models

import "time"

// WeatherRecord is the body returned by GET /weather/{city}. Condition is set in
// static mode, Humidity in synthesized mode.
type WeatherRecord struct {
	City        string    `json:"city"`
	Temperature int       `json:"temp"`
	Condition   string    `json:"condition,omitempty"`
	Humidity    int       `json:"humidity,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
