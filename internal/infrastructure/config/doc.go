// Package config loads and validates the bridge configuration: YAML
// file, then PRINTBRIDGE_* environment overrides, then derived values
// (MQTT account from the auth username, client id from the printer id),
// then validation. Loaded once at startup.
//
// Broker credentials and the InfluxDB token belong in environment
// variables, not the YAML file.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Printer.ID)
package config
