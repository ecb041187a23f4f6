package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del tracker.
type Config struct {
	Tracker TrackerConfig `yaml:"tracker"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Publish PublishConfig `yaml:"publish"`
	Log     LogConfig     `yaml:"log"`
}

// TrackerConfig controla el ciclo de tracking.
type TrackerConfig struct {
	Schedule           string  `yaml:"schedule"`    // cron de 5 campos o @every 6h
	BudgetUSDC         float64 `yaml:"budget_usdc"` // capital de referencia para repartir arbitrajes
	TopMovers          int     `yaml:"top_movers"`
	MinLiquidityVolume float64 `yaml:"min_liquidity_volume"` // por debajo, el mercado se ignora en el reporte de liquidez
	Table              *bool   `yaml:"table"`                // false = salida compacta
}

// APIConfig contiene los base URLs y parámetros de las APIs.
type APIConfig struct {
	GammaBase           string `yaml:"gamma_base"`
	CLOBBase            string `yaml:"clob_base"`
	LimitlessBase       string `yaml:"limitless_base"`
	LimitlessCategoryID int    `yaml:"limitless_category_id"`
	TimeoutSeconds      int    `yaml:"timeout_seconds"`
	PreMarketTag        string `yaml:"pre_market_tag"`
	PreMarketLimit      int    `yaml:"pre_market_limit"`
	SkipBooks           bool   `yaml:"skip_books"` // no pedir orderbooks (más rápido, sin profundidad)
}

// StorageConfig controla dónde se persisten los ciclos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// CacheConfig configura la caché Redis del último resumen. Addr vacío = desactivada.
type CacheConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	TTLHours      int    `yaml:"ttl_hours"`
}

// PublishConfig configura la publicación de arbitrajes en Kafka. Sin brokers = desactivada.
type PublishConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	return &cfg, nil
}

// Timeout devuelve el timeout HTTP como time.Duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// CacheTTL devuelve el TTL de la caché como time.Duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// TableOutput indica si la consola imprime tablas completas.
func (c *Config) TableOutput() bool {
	return c.Tracker.Table == nil || *c.Tracker.Table
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("GAMMA_API"); v != "" {
		cfg.API.GammaBase = v
	}
	if v := os.Getenv("CLOB_API"); v != "" {
		cfg.API.CLOBBase = v
	}
	if v := os.Getenv("LIMITLESS_API"); v != "" {
		cfg.API.LimitlessBase = v
	}
	if v := os.Getenv("LIMITLESS_CATEGORY_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LIMITLESS_CATEGORY_ID %q: %w", v, err)
		}
		cfg.API.LimitlessCategoryID = id
	}
	if v := os.Getenv("API_TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("API_TIMEOUT %q: %w", v, err)
		}
		cfg.API.TimeoutSeconds = secs
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Publish.Brokers = splitList(v)
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Tracker.Schedule == "" {
		cfg.Tracker.Schedule = "0 9 * * *"
	}
	if cfg.Tracker.BudgetUSDC < 0 {
		cfg.Tracker.BudgetUSDC = 0
	}
	if cfg.Tracker.TopMovers <= 0 {
		cfg.Tracker.TopMovers = 5
	}
	if cfg.Tracker.MinLiquidityVolume <= 0 {
		cfg.Tracker.MinLiquidityVolume = 100
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.LimitlessBase == "" {
		cfg.API.LimitlessBase = "https://api.limitless.exchange"
	}
	if cfg.API.LimitlessCategoryID <= 0 {
		cfg.API.LimitlessCategoryID = 43 // Pre-TGE
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 30
	}
	if cfg.API.PreMarketTag == "" {
		cfg.API.PreMarketTag = "pre-market"
	}
	if cfg.API.PreMarketLimit <= 0 {
		cfg.API.PreMarketLimit = 200
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "premarket.db"
	}
	if cfg.Cache.TTLHours <= 0 {
		cfg.Cache.TTLHours = 48
	}
	if cfg.Publish.Topic == "" {
		cfg.Publish.Topic = "premarket.arbs"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
