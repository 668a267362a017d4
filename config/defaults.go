package config

import "github.com/benoitkugler/icondup/report"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Library.Extensions == nil {
		cfg.Library.Extensions = []string{".svg"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Library.Directories) > 0 && cfg.Library.Recursive == nil {
		t := true
		cfg.Library.Recursive = &t
	}
	if cfg.Report.Duplicate == 0 {
		cfg.Report.Duplicate = report.DefaultThresholds.Duplicate
	}
	if cfg.Report.Similar == 0 {
		cfg.Report.Similar = report.DefaultThresholds.Similar
	}
	if cfg.Report.Related == 0 {
		cfg.Report.Related = report.DefaultThresholds.Related
	}
	if cfg.Report.Limit == 0 {
		cfg.Report.Limit = 20
	}
}
