// Package config handles loading and validating BrewLogic Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with BREWLOGIC_* environment variables
//   - Validation of every section, reported as one error
//   - Default value handling
//
// Security Considerations:
//   - Broker passwords and InfluxDB tokens should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Device.ID)
package config
