// Package config provides configuration management for tubetunes.
//
// This package handles:
//   - Loading and saving settings from JSON or YAML files
//   - Overriding settings from TUBETUNES_* environment variables
//   - Default configuration values and validation
//   - Conversion to the per-task download options
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads to ~/Music/tubetunes
//	// 3 concurrent downloads, 3 retries 5s apart, 10 minute timeout
//	// ID3 tagging and cover art enabled
//
// # Loading from File
//
// The file format follows the extension:
//
//	settings, err := config.Load("/path/to/config.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Environment
//
//	if err := settings.LoadFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := settings.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration Options
//
// Settings includes options for:
//   - Download path, concurrency, retries, timeout
//   - Audio format, quality and file naming
//   - Cover art handling and ID3 tag modification
//   - Catalog location and playlist export
//   - Prometheus metrics endpoint
package config
