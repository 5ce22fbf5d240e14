package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/runway-selector/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	RunwayFile      string
	RwyDir          string
	Airports        []string
	IgnoredAirports []string
	RunInterval     time.Duration
	OperatorPrompt  bool

	// METAR source configuration.
	METARURL           string
	METARRegion        string
	METARExtraAirports []string
	METARFile          string
	METARTimeout       time.Duration
	METARCacheTTL      time.Duration
	FetchRetries       int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	LogFile         string
	ShutdownTimeout time.Duration

	// Kafka decision publishing.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool

	// SQLite decision history; empty disables it.
	HistoryDB string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	metarTimeout, err := parseDuration("METAR_TIMEOUT", "5s", false)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("METAR_CACHE_TTL", "0", true)
	if err != nil {
		return nil, err
	}
	runInterval, err := parseDuration("RUN_INTERVAL", "0", true)
	if err != nil {
		return nil, err
	}

	retries, err := strconv.Atoi(sharedcfg.EnvOrDefault("FETCH_RETRIES", "3"))
	if err != nil || retries < 1 || retries > 10 {
		return nil, errors.New("invalid FETCH_RETRIES: must be between 1 and 10")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		RunwayFile:      sharedcfg.EnvOrDefault("RUNWAY_FILE", "runway.txt"),
		RwyDir:          sharedcfg.EnvOrDefault("RWY_DIR", "."),
		Airports:        parseList(os.Getenv("AIRPORTS")),
		IgnoredAirports: parseList(sharedcfg.EnvOrDefault("IGNORED_AIRPORTS", strings.Join(domain.DefaultIgnoredAirports(), ","))),
		RunInterval:     runInterval,
		OperatorPrompt:  sharedcfg.EnvOrDefault("OPERATOR_PROMPT", "true") == "true",

		METARURL:           strings.TrimRight(sharedcfg.EnvOrDefault("METAR_URL", "https://metar.vatsim.net"), "/"),
		METARRegion:        strings.ToUpper(sharedcfg.EnvOrDefault("METAR_REGION", "EN")),
		METARExtraAirports: parseList(sharedcfg.EnvOrDefault("METAR_EXTRA_AIRPORTS", "ESKS")),
		METARFile:          os.Getenv("METAR_FILE"),
		METARTimeout:       metarTimeout,
		METARCacheTTL:      cacheTTL,
		FetchRetries:       retries,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:         os.Getenv("LOG_FILE"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "active-runways"),
		KafkaEnabled: kafkaEnabled,

		HistoryDB: os.Getenv("HISTORY_DB"),
	}

	if cfg.RunwayFile == "" {
		return nil, errors.New("RUNWAY_FILE is required")
	}
	if cfg.METARFile == "" && cfg.METARURL == "" {
		return nil, errors.New("METAR_URL is required when METAR_FILE is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when Kafka is enabled")
	}

	return cfg, nil
}

// parseDuration reads a duration variable. Zero is accepted only when
// allowZero is set; negative values never are.
func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseList splits a comma-separated list of ICAO codes, upper-casing and
// dropping empty entries.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
