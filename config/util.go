package config

import "github.com/samber/lo"

// New produces a new config object from the defaults, the first config
// file found in paths and the environment.
func New(paths ...string) (*Config, error) {
	cfg := NewDefault()
	if err := Load(paths, cfg); err != nil {
		return nil, err
	}
	cfg.Checker = cfg.Checker.WithDefaults()
	return cfg, nil
}

// NewDefault gives a deep copy of the Default configuration.
func NewDefault() *Config {
	cfg := Default
	if Default.Checker.DefaultAlertWindowDays != nil {
		cfg.Checker.DefaultAlertWindowDays = lo.ToPtr(*Default.Checker.DefaultAlertWindowDays)
	}
	if Default.Watch.Webhook.Headers != nil {
		cfg.Watch.Webhook.Headers = make(map[string]string, len(Default.Watch.Webhook.Headers))
		for k, v := range Default.Watch.Webhook.Headers {
			cfg.Watch.Webhook.Headers[k] = v
		}
	}
	return &cfg
}
