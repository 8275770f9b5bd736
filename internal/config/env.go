package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix is the prefix of every environment variable read by LoadFromEnv.
const EnvPrefix = "TUBETUNES_"

// LoadFromEnv overrides settings from TUBETUNES_* environment variables.
//
// Durations accept Go duration strings ("500ms", "2m") or plain seconds.
//
//	TUBETUNES_DOWNLOADS_PATH     downloads_path
//	TUBETUNES_CATALOG_PATH       catalog_path
//	TUBETUNES_MAX_CONCURRENT     max_concurrent_downloads
//	TUBETUNES_MAX_RETRIES        download_max_retries
//	TUBETUNES_RETRY_DELAY        download_retry_delay
//	TUBETUNES_TIMEOUT            download_timeout
//	TUBETUNES_AUTO_RETRY         auto_retry
//	TUBETUNES_AUDIO_FORMAT       audio_format
//	TUBETUNES_AUDIO_QUALITY      audio_quality
//	TUBETUNES_METRICS_ADDRESS    metrics_address
func (s *Settings) LoadFromEnv() error {
	if v := os.Getenv(EnvPrefix + "DOWNLOADS_PATH"); v != "" {
		s.DownloadsPath = v
	}
	if v := os.Getenv(EnvPrefix + "CATALOG_PATH"); v != "" {
		s.CatalogPath = v
	}
	if v := os.Getenv(EnvPrefix + "MAX_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_CONCURRENT: %w", EnvPrefix, err)
		}
		s.MaxConcurrentDownloads = n
	}
	if v := os.Getenv(EnvPrefix + "MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_RETRIES: %w", EnvPrefix, err)
		}
		s.DownloadMaxRetries = n
	}
	if v := os.Getenv(EnvPrefix + "RETRY_DELAY"); v != "" {
		secs, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid %sRETRY_DELAY: %w", EnvPrefix, err)
		}
		s.DownloadRetryDelay = secs
	}
	if v := os.Getenv(EnvPrefix + "TIMEOUT"); v != "" {
		secs, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid %sTIMEOUT: %w", EnvPrefix, err)
		}
		s.DownloadTimeout = secs
	}
	if v := os.Getenv(EnvPrefix + "AUTO_RETRY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sAUTO_RETRY: %w", EnvPrefix, err)
		}
		s.AutoRetry = b
	}
	if v := os.Getenv(EnvPrefix + "AUDIO_FORMAT"); v != "" {
		s.AudioFormat = v
	}
	if v := os.Getenv(EnvPrefix + "AUDIO_QUALITY"); v != "" {
		s.AudioQuality = v
	}
	if v := os.Getenv(EnvPrefix + "METRICS_ADDRESS"); v != "" {
		s.MetricsAddress = v
	}
	return nil
}

// parseSeconds accepts "90", "1.5" or a Go duration such as "90s".
func parseSeconds(v string) (float64, error) {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	return d.Seconds(), nil
}
