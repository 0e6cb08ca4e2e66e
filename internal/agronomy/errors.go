package agronomy

import "fmt"

// InvalidReadingError reports a sensor value that is missing, NaN, or
// outside its physical range. Field names the offending input.
type InvalidReadingError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidReadingError) Error() string {
	return fmt.Sprintf("invalid reading %s=%v: %s", e.Field, e.Value, e.Reason)
}

// ConfigurationError reports a lookup against an incomplete or inconsistent
// configuration table, e.g. a soil type without a field-capacity profile.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %q: %s", e.Key, e.Reason)
}
