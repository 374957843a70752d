package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host  string `yaml:"host"`
		Port  int    `yaml:"port"`
		Env   string `yaml:"env"`
		Debug bool   `yaml:"debug"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver"` // postgres, mysql
		DSN             string `yaml:"url"`
		MaxOpenConns    int    `yaml:"max_open_conns"`
		MaxIdleConns    int    `yaml:"max_idle_conns"`
		SlowQueryMs     int    `yaml:"slow_query_ms"`
		LockTimeoutMs   int    `yaml:"lock_timeout_ms"`
		AutoMigrate     bool   `yaml:"auto_migrate"`
		SeedDefaultData bool   `yaml:"seed_default_data"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		Issuer string `yaml:"issuer"`
	} `yaml:"jwt"`

	Cache struct {
		Type          string `yaml:"type"` // inmemory, redis
		TTLSeconds    int    `yaml:"ttl_seconds"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
	} `yaml:"cache"`

	Workers struct {
		Enabled               bool `yaml:"enabled"`
		ExpirySweepSeconds    int  `yaml:"expiry_sweep_seconds"`
		IndexReconcileSeconds int  `yaml:"index_reconcile_seconds"`
	} `yaml:"workers"`

	RateLimit struct {
		RequestsPerMinute int `yaml:"requests_per_minute"`
		Burst             int `yaml:"burst"`
	} `yaml:"rate_limit"`

	Billing struct {
		DefaultCurrency string `yaml:"default_currency"`
		RefundRetries   int    `yaml:"refund_retries"`
	} `yaml:"billing"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

var AppConfig *Config

// LoadConfig читает config.yaml, а при наличии DATABASE_URL собирает конфиг из окружения.
// Перед этим подтягивается .env, если он есть рядом.
func LoadConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	var cfg Config
	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		log.Println("Загрузка из config.yaml")

		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}
	} else {
		log.Println("Загрузка конфигурации из переменных окружения")
		cfg.Database.DSN = dbURL
		cfg.Database.Driver = os.Getenv("DATABASE_DRIVER")
		cfg.Server.Env = os.Getenv("SERVER_ENV")
		cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
		cfg.Cache.Type = os.Getenv("CACHE_TYPE")
		cfg.Cache.RedisAddr = os.Getenv("REDIS_ADDR")
		cfg.Database.AutoMigrate = true
		cfg.Database.SeedDefaultData = true
		cfg.Workers.Enabled = true
	}

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.SlowQueryMs == 0 {
		cfg.Database.SlowQueryMs = 200
	}
	if cfg.Database.LockTimeoutMs == 0 {
		cfg.Database.LockTimeoutMs = 5000
	}
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = "inmemory"
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.Workers.ExpirySweepSeconds == 0 {
		cfg.Workers.ExpirySweepSeconds = 3600
	}
	if cfg.Workers.IndexReconcileSeconds == 0 {
		cfg.Workers.IndexReconcileSeconds = 900
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = 60
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 10
	}
	if cfg.Billing.DefaultCurrency == "" {
		cfg.Billing.DefaultCurrency = "USD"
	}
	if cfg.Billing.RefundRetries == 0 {
		cfg.Billing.RefundRetries = 5
	}
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.Database.LockTimeoutMs) * time.Millisecond
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
