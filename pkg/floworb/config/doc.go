/*
Package config provides type-safe configuration extraction and the
application Settings.

# Basic Usage

Wrap any map and extract values with defaults:

	cfg := config.New(map[string]any{
	    "run_timeout": "30s",
	    "port":        9090,
	})

	timeout := cfg.Duration("run_timeout", time.Minute) // 30s
	port := cfg.Int("port", 8080)                        // 9090

Nested sections are reached with Sub:

	level := cfg.Sub("log").String("level", "info")

# File Loading

Load configuration from YAML or JSON files and resolve Settings:

	cfg, err := config.Load("floworb.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	settings := cfg.Settings()
	if err := settings.Validate(); err != nil {
	    log.Fatal(err)
	}

Missing keys and values of the wrong type fall back to Defaults().
*/
package config
