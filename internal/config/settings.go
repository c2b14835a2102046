package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lidarforest/processing/internal/archive"
)

// Settings is the process-wide configuration, constructed once in main
// and passed explicitly into the worker and its collaborators. Fields
// are plain values with defaults resolved at load time (environment
// variables are sparse in practice, so there is no value in the
// optional-pointer/Get* indirection TuningConfig uses for its much
// larger, mostly-absent JSON payload).
type Settings struct {
	MaxFileSizeMB   int64
	MinPointCount   int
	JobTimeout      time.Duration
	ResultTTL       time.Duration
	CallbackTimeout time.Duration
	CallbackRetries int

	SupportedVersions     []string
	SupportedPointFormats []int
	AllowedExtensions     []string

	RequireCRS bool

	BrokerDSN    string
	QueueName    string
	ResultPrefix string

	WebhookSecret string

	// ArchiveEnabled turns on the Postgres write-behind archive; when
	// false the remaining Archive* fields are never read.
	ArchiveEnabled  bool
	ArchiveHost     string
	ArchivePort     int
	ArchiveDatabase string
	ArchiveUser     string
	ArchivePassword string
	ArchiveSSLMode  string
}

// Default returns the documented defaults for every setting.
func Default() Settings {
	return Settings{
		MaxFileSizeMB:         2048,
		MinPointCount:         100,
		JobTimeout:            600 * time.Second,
		ResultTTL:             3600 * time.Second,
		CallbackTimeout:       30 * time.Second,
		CallbackRetries:       5,
		SupportedVersions:     []string{"1.2", "1.3", "1.4"},
		SupportedPointFormats: []int{0, 1, 2, 3, 6, 7, 8},
		AllowedExtensions:     []string{".las", ".laz"},
		RequireCRS:            false,
		BrokerDSN:             "lidarforest.db",
		QueueName:             "lidarforest:jobs",
		ResultPrefix:          "lidarforest:result:",
		ArchivePort:           5432,
		ArchiveSSLMode:        "disable",
	}
}

// FromEnv builds Settings starting from Default() and overriding any
// field whose environment variable is set. Names follow the stable
// list: numeric (LIDARFOREST_MAX_FILE_SIZE_MB, ...), lists
// (LIDARFOREST_SUPPORTED_VERSIONS, comma-separated), booleans
// (LIDARFOREST_REQUIRE_CRS), broker endpoint fields, queue_name,
// result_prefix.
func FromEnv() (Settings, error) {
	s := Default()

	var err error
	if s.MaxFileSizeMB, err = envInt64("LIDARFOREST_MAX_FILE_SIZE_MB", s.MaxFileSizeMB); err != nil {
		return s, err
	}
	var minPoints int64
	if minPoints, err = envInt64("LIDARFOREST_MIN_POINT_COUNT", int64(s.MinPointCount)); err != nil {
		return s, err
	}
	s.MinPointCount = int(minPoints)

	if s.JobTimeout, err = envDuration("LIDARFOREST_JOB_TIMEOUT", s.JobTimeout); err != nil {
		return s, err
	}
	if s.ResultTTL, err = envDuration("LIDARFOREST_RESULT_TTL", s.ResultTTL); err != nil {
		return s, err
	}
	if s.CallbackTimeout, err = envDuration("LIDARFOREST_CALLBACK_TIMEOUT", s.CallbackTimeout); err != nil {
		return s, err
	}
	var retries int64
	if retries, err = envInt64("LIDARFOREST_CALLBACK_RETRIES", int64(s.CallbackRetries)); err != nil {
		return s, err
	}
	s.CallbackRetries = int(retries)

	s.SupportedVersions = envList("LIDARFOREST_SUPPORTED_VERSIONS", s.SupportedVersions)
	s.AllowedExtensions = envList("LIDARFOREST_ALLOWED_EXTENSIONS", s.AllowedExtensions)
	if raw, ok := os.LookupEnv("LIDARFOREST_SUPPORTED_POINT_FORMATS"); ok {
		formats, err := parseIntList(raw)
		if err != nil {
			return s, fmt.Errorf("config: LIDARFOREST_SUPPORTED_POINT_FORMATS: %w", err)
		}
		s.SupportedPointFormats = formats
	}

	if s.RequireCRS, err = envBool("LIDARFOREST_REQUIRE_CRS", s.RequireCRS); err != nil {
		return s, err
	}

	s.BrokerDSN = envString("LIDARFOREST_BROKER_DSN", s.BrokerDSN)
	s.QueueName = envString("LIDARFOREST_QUEUE_NAME", s.QueueName)
	s.ResultPrefix = envString("LIDARFOREST_RESULT_PREFIX", s.ResultPrefix)
	s.WebhookSecret = envString("LIDARFOREST_WEBHOOK_SECRET", s.WebhookSecret)

	if s.ArchiveEnabled, err = envBool("LIDARFOREST_ARCHIVE_ENABLED", s.ArchiveEnabled); err != nil {
		return s, err
	}
	s.ArchiveHost = envString("LIDARFOREST_ARCHIVE_HOST", s.ArchiveHost)
	var archivePort int64
	if archivePort, err = envInt64("LIDARFOREST_ARCHIVE_PORT", int64(s.ArchivePort)); err != nil {
		return s, err
	}
	s.ArchivePort = int(archivePort)
	s.ArchiveDatabase = envString("LIDARFOREST_ARCHIVE_DATABASE", s.ArchiveDatabase)
	s.ArchiveUser = envString("LIDARFOREST_ARCHIVE_USER", s.ArchiveUser)
	s.ArchivePassword = envString("LIDARFOREST_ARCHIVE_PASSWORD", s.ArchivePassword)
	s.ArchiveSSLMode = envString("LIDARFOREST_ARCHIVE_SSL_MODE", s.ArchiveSSLMode)

	return s, nil
}

// ArchiveConfig converts the archive-related Settings fields into an
// archive.Config. Callers should only use this when ArchiveEnabled is
// true.
func (s Settings) ArchiveConfig() archive.Config {
	return archive.Config{
		Host:     s.ArchiveHost,
		Port:     s.ArchivePort,
		Database: s.ArchiveDatabase,
		User:     s.ArchiveUser,
		Password: s.ArchivePassword,
		SSLMode:  s.ArchiveSSLMode,
	}
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) (int64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func envList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseIntList(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// MaxFileSizeBytes converts MaxFileSizeMB into bytes for lasvalidate.Options.
func (s Settings) MaxFileSizeBytes() int64 {
	return s.MaxFileSizeMB * 1024 * 1024
}
