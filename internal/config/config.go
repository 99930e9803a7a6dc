package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath — переменная окружения с путём к YAML-конфигу.
const EnvConfigPath = "TILEWORLD_CONFIG"

// DefaultConfigPath — путь по умолчанию, если EnvConfigPath не задан.
const DefaultConfigPath = "config/tileworld.yaml"

// MaxWarmRadius — верхняя граница радиуса прогрева: (2r+1)² чанков в памяти.
const MaxWarmRadius = 32

// Storage drivers.
const (
	DriverNone     = "none"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Worldgen holds all configuration for worldgen and worldserver.
type Worldgen struct {
	LogLevel string `yaml:"log_level"`

	// ASCII preview side for dumps
	PreviewSize int `yaml:"preview_size"`

	// Warm-up: square of chunks around (0, 0)
	WarmRadius  int32 `yaml:"warm_radius"`
	WarmWorkers int   `yaml:"warm_workers"`

	// Spawn tick loop
	TickInterval time.Duration `yaml:"tick_interval"`

	Storage Storage    `yaml:"storage"`
	HTTP    HTTPConfig `yaml:"http"`
}

// Storage selects where chunk snapshots go.
type Storage struct {
	Driver     string         `yaml:"driver"` // none | postgres | sqlite
	Database   DatabaseConfig `yaml:"database"`
	SQLitePath string         `yaml:"sqlite_path"`
}

// Enabled reports whether snapshots are persisted at all.
func (s Storage) Enabled() bool {
	return s.Driver != "" && s.Driver != DriverNone
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// HTTPConfig — адрес диагностического HTTP API.
type HTTPConfig struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// GET по незакэшированному чанку генерирует его; иначе 404
	GenerateOnDemand bool `yaml:"generate_on_demand"`
}

// Addr returns host:port for net/http.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.BindAddress, h.Port)
}

// DefaultWorldgen returns Worldgen config with sensible defaults.
func DefaultWorldgen() Worldgen {
	return Worldgen{
		LogLevel:     "info",
		PreviewSize:  32,
		WarmRadius:   1,
		WarmWorkers:  4,
		TickInterval: 100 * time.Millisecond,
		Storage: Storage{
			Driver: DriverNone,
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "tileworld",
				Password: "tileworld",
				DBName:   "tileworld",
				SSLMode:  "disable",
			},
			SQLitePath: "data/chunks.db",
		},
		HTTP: HTTPConfig{
			BindAddress: "127.0.0.1",
			Port:        8080,
		},
	}
}

// Validate проверяет значения после загрузки.
func (w Worldgen) Validate() error {
	switch strings.ToLower(w.Storage.Driver) {
	case "", DriverNone, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", w.Storage.Driver)
	}
	if w.Storage.Driver == DriverSQLite && w.Storage.SQLitePath == "" {
		return fmt.Errorf("storage driver sqlite requires sqlite_path")
	}
	if w.PreviewSize < 1 || w.PreviewSize > 256 {
		return fmt.Errorf("preview_size %d out of range [1, 256]", w.PreviewSize)
	}
	if w.WarmRadius < 0 || w.WarmRadius > MaxWarmRadius {
		return fmt.Errorf("warm_radius %d out of range [0, %d]", w.WarmRadius, MaxWarmRadius)
	}
	if w.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", w.TickInterval)
	}
	return nil
}

// Path returns the config path: TILEWORLD_CONFIG if set, otherwise def.
func Path(def string) string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return def
}

// LoadWorldgen loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadWorldgen(path string) (Worldgen, error) {
	cfg := DefaultWorldgen()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}
