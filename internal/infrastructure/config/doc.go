// Package config handles loading and validating CakeBoard configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with CAKEBOARD_* environment variables
//   - Validation of every section, reporting all problems at once
//   - The default board layout used when no file is present
//
// Secrets (MQTT password, InfluxDB token, API secret) should be supplied
// through the environment rather than the file.
//
// Usage:
//
//	cfg, err := config.Load(config.Path())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Board.TargetHz)
package config
