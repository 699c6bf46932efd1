package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv       = "BILLSYNC_CONFIG"
	logLevelEnv         = "LOG_LEVEL"
	logFormatEnv        = "LOG_FORMAT"
	httpAddrEnv         = "HTTP_ADDR"
	manualTokenEnv      = "SYNC_MANUAL_TOKEN"
	cronTokenEnv        = "SYNC_CRON_TOKEN"
	sourceAPIKeyEnv     = "OPENSTATES_API_KEY"
	sourceBaseURLEnv    = "OPENSTATES_BASE_URL"
	storeBackendEnv     = "STORE_BACKEND"
	airtableAPIKeyEnv   = "AIRTABLE_API_KEY"
	airtableBaseIDEnv   = "AIRTABLE_BASE_ID"
	databaseDriverEnv   = "DATABASE_DRIVER"
	databaseDSNEnv      = "DATABASE_DSN"
	schedulerEnabledEnv = "SCHEDULER_ENABLED"

	BackendAirtable = "airtable"
	BackendSQL      = "sql"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Source    SourceConfig    `yaml:"source"`
	Store     StoreConfig     `yaml:"store"`
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Sync      SyncConfig      `yaml:"sync"`
	Subjects  SubjectsConfig  `yaml:"subjects"`
}

// LoggingConfig selects slog level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HTTPConfig configures the trigger server.
type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// AuthConfig holds the bearer secrets of the two trigger endpoints.
type AuthConfig struct {
	ManualToken string `yaml:"manualToken"`
	CronToken   string `yaml:"cronToken"`
}

// SourceConfig describes how to reach the legislative-data API.
type SourceConfig struct {
	BaseURL   string        `yaml:"baseUrl"`
	APIKey    string        `yaml:"apiKey"`
	Timeout   time.Duration `yaml:"timeout"`
	PageSize  int           `yaml:"pageSize"`
	ChunkSize int           `yaml:"chunkSize"`
}

// StoreConfig selects the record store backend and its table names.
type StoreConfig struct {
	Backend  string         `yaml:"backend"`
	Airtable AirtableConfig `yaml:"airtable"`
	Tables   TablesConfig   `yaml:"tables"`
}

// AirtableConfig wires the hosted record store.
type AirtableConfig struct {
	BaseURL           string        `yaml:"baseUrl"`
	APIKey            string        `yaml:"apiKey"`
	BaseID            string        `yaml:"baseId"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Timeout           time.Duration `yaml:"timeout"`
}

// TablesConfig names the collections records are written to.
type TablesConfig struct {
	Bills       string `yaml:"bills"`
	Legislators string `yaml:"legislators"`
	Subjects    string `yaml:"subjects"`
	States      string `yaml:"states"`
}

// DatabaseConfig describes the SQL backend used for records and watermarks.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SchedulerConfig defines the in-process fixed-interval trigger.
type SchedulerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// SyncConfig tunes the orchestrators.
type SyncConfig struct {
	DefaultLimit int           `yaml:"defaultLimit"`
	BatchSize    int           `yaml:"batchSize"`
	BatchDelay   time.Duration `yaml:"batchDelay"`
	States       []string      `yaml:"states"`
	Watermarks   bool          `yaml:"watermarks"`
}

// SubjectsConfig extends the subject display-name override table.
type SubjectsConfig struct {
	Overrides map[string]string `yaml:"overrides"`
}

// Load reads the YAML file named by BILLSYNC_CONFIG (if set) and applies
// environment overrides.
func Load() Config {
	return LoadFrom(os.Getenv(configPathEnv))
}

// LoadFrom reads YAML configuration from path (if non-empty) and applies
// environment overrides.
func LoadFrom(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Parse merges raw YAML onto the defaults without consulting the environment.
func Parse(raw []byte) (Config, error) {
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, err
	}
	return mergeConfig(defaultConfig(), fileCfg), nil
}

func (c *Config) applyEnvOverrides() {
	setString := func(env string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	setString(logLevelEnv, &c.Logging.Level)
	setString(logFormatEnv, &c.Logging.Format)
	setString(httpAddrEnv, &c.HTTP.Addr)
	setString(manualTokenEnv, &c.Auth.ManualToken)
	setString(cronTokenEnv, &c.Auth.CronToken)
	setString(sourceAPIKeyEnv, &c.Source.APIKey)
	setString(sourceBaseURLEnv, &c.Source.BaseURL)
	setString(storeBackendEnv, &c.Store.Backend)
	setString(airtableAPIKeyEnv, &c.Store.Airtable.APIKey)
	setString(airtableBaseIDEnv, &c.Store.Airtable.BaseID)
	setString(databaseDriverEnv, &c.Database.Driver)
	setString(databaseDSNEnv, &c.Database.DSN)

	if v := os.Getenv(schedulerEnabledEnv); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Scheduler.Enabled = enabled
		} else {
			log.Printf("config: invalid %s=%q, keeping %t", schedulerEnabledEnv, v, c.Scheduler.Enabled)
		}
	}
}

func mergeConfig(base, override Config) Config {
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pickInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	pickDur := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}

	pick(&base.Logging.Level, override.Logging.Level)
	pick(&base.Logging.Format, override.Logging.Format)

	pick(&base.HTTP.Addr, override.HTTP.Addr)
	pickDur(&base.HTTP.ReadTimeout, override.HTTP.ReadTimeout)
	pickDur(&base.HTTP.WriteTimeout, override.HTTP.WriteTimeout)

	pick(&base.Auth.ManualToken, override.Auth.ManualToken)
	pick(&base.Auth.CronToken, override.Auth.CronToken)

	pick(&base.Source.BaseURL, override.Source.BaseURL)
	pick(&base.Source.APIKey, override.Source.APIKey)
	pickDur(&base.Source.Timeout, override.Source.Timeout)
	pickInt(&base.Source.PageSize, override.Source.PageSize)
	pickInt(&base.Source.ChunkSize, override.Source.ChunkSize)

	pick(&base.Store.Backend, override.Store.Backend)
	pick(&base.Store.Airtable.BaseURL, override.Store.Airtable.BaseURL)
	pick(&base.Store.Airtable.APIKey, override.Store.Airtable.APIKey)
	pick(&base.Store.Airtable.BaseID, override.Store.Airtable.BaseID)
	pickDur(&base.Store.Airtable.Timeout, override.Store.Airtable.Timeout)
	if override.Store.Airtable.RequestsPerSecond > 0 {
		base.Store.Airtable.RequestsPerSecond = override.Store.Airtable.RequestsPerSecond
	}
	pick(&base.Store.Tables.Bills, override.Store.Tables.Bills)
	pick(&base.Store.Tables.Legislators, override.Store.Tables.Legislators)
	pick(&base.Store.Tables.Subjects, override.Store.Tables.Subjects)
	pick(&base.Store.Tables.States, override.Store.Tables.States)

	pick(&base.Database.Driver, override.Database.Driver)
	pick(&base.Database.DSN, override.Database.DSN)

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	pickDur(&base.Scheduler.Interval, override.Scheduler.Interval)

	pickInt(&base.Sync.DefaultLimit, override.Sync.DefaultLimit)
	pickInt(&base.Sync.BatchSize, override.Sync.BatchSize)
	pickDur(&base.Sync.BatchDelay, override.Sync.BatchDelay)
	if len(override.Sync.States) > 0 {
		base.Sync.States = normalizeStates(override.Sync.States)
	}
	if override.Sync.Watermarks {
		base.Sync.Watermarks = true
	}

	if len(override.Subjects.Overrides) > 0 {
		base.Subjects.Overrides = override.Subjects.Overrides
	}

	return base
}

func normalizeStates(states []string) []string {
	out := make([]string, 0, len(states))
	for _, s := range states {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// DefaultStates is the fixed list the scheduled trigger walks through.
var DefaultStates = []string{
	"al", "ak", "az", "ar", "ca", "co", "ct", "de", "fl", "ga",
	"hi", "id", "il", "in", "ia", "ks", "ky", "la", "me", "md",
	"ma", "mi", "mn", "ms", "mo", "mt", "ne", "nv", "nh", "nj",
	"nm", "ny", "nc", "nd", "oh", "ok", "or", "pa", "ri", "sc",
	"sd", "tn", "tx", "ut", "vt", "va", "wa", "wv", "wi", "wy",
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Minute,
		},
		Source: SourceConfig{
			BaseURL:   "https://v3.openstates.org",
			Timeout:   30 * time.Second,
			PageSize:  20,
			ChunkSize: 10,
		},
		Store: StoreConfig{
			Backend: BackendAirtable,
			Airtable: AirtableConfig{
				BaseURL:           "https://api.airtable.com/v0",
				RequestsPerSecond: 5,
				Timeout:           20 * time.Second,
			},
			Tables: TablesConfig{
				Bills:       "Bills",
				Legislators: "Legislators",
				Subjects:    "Subjects",
				States:      "States",
			},
		},
		Database:  DatabaseConfig{Driver: "sqlite3", DSN: "file:billsync.db?_busy_timeout=5000"},
		Scheduler: SchedulerConfig{Enabled: false, Interval: 24 * time.Hour},
		Sync: SyncConfig{
			DefaultLimit: 50,
			BatchSize:    5,
			BatchDelay:   2 * time.Second,
			States:       append([]string(nil), DefaultStates...),
		},
	}
}
