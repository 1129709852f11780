package metrics

import (
	"fmt"

	coremetrics "github.com/warebotics/warebot/core/metrics"
)

// New builds the sink selected by the configuration. An empty sink list
// yields a NopSink, several sinks are combined into a MultiSink.
func New(cfg coremetrics.Config) (coremetrics.Sink, error) {
	if len(cfg.Sinks) == 0 {
		return coremetrics.NopSink{}, nil
	}
	sinks := make([]coremetrics.Sink, 0, len(cfg.Sinks))
	for _, name := range cfg.Sinks {
		switch name {
		case "prometheus":
			s, err := NewPromSink()
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, s)
		case "influx":
			sinks = append(sinks, NewInfluxSinkWithFallback(cfg.Influx))
		default:
			return nil, fmt.Errorf("unknown metrics sink %q", name)
		}
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}
