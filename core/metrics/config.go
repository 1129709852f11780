package metrics

import "fmt"

// InfluxConfig holds the InfluxDB connection parameters.
type InfluxConfig struct {
	URL    string `json:"url" yaml:"url"`
	Token  string `json:"token" yaml:"token"`
	Org    string `json:"org" yaml:"org"`
	Bucket string `json:"bucket" yaml:"bucket"`
}

// Config defines settings for metrics sinks. Sinks lists the enabled
// backends; an empty list disables metrics entirely.
type Config struct {
	Sinks          []string     `json:"sinks" yaml:"sinks"` // prometheus, influx
	PrometheusAddr string       `json:"prometheus_addr" yaml:"prometheus_addr"`
	Influx         InfluxConfig `json:"influx" yaml:"influx"`
}

// SetDefaults fills unset fields with sane values.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
	if c.Influx.Bucket == "" {
		c.Influx.Bucket = "warebot"
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	for _, s := range c.Sinks {
		switch s {
		case "prometheus", "influx":
		default:
			return fmt.Errorf("unknown metrics sink %q", s)
		}
	}
	return nil
}
