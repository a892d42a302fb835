// Package config handles loading and validating babylog configuration.
//
// This package manages:
//   - Loading configuration from an optional YAML file
//   - Loading a .env file and applying BABYLOG_* environment overrides
//   - Validation of required fields
//
// Security Considerations:
//   - The JWT secret should be supplied via BABYLOG_JWT_SECRET, never committed
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Port)
package config
