package app

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/veristudy/veristudy-backend/internal/platform/logger"
	"github.com/veristudy/veristudy-backend/internal/utils"
)

// Config is the process-level configuration. Values come from the
// environment first; an optional YAML file named by CONFIG_FILE overrides
// individual fields for local and compose setups.
type Config struct {
	Addr         string   `yaml:"addr"`
	LogMode      string   `yaml:"log_mode"`
	StoreBackend string   `yaml:"store_backend"`
	ProModel     string   `yaml:"pro_model"`
	FlashModel   string   `yaml:"flash_model"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// Store backends accepted by Config.StoreBackend.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Addr:         utils.GetEnv("SERVER_ADDR", ":8080", log),
		LogMode:      utils.GetEnv("LOG_MODE", "development", log),
		StoreBackend: utils.GetEnv("STORE_BACKEND", StoreMemory, log),
		ProModel:     utils.GetEnv("GEMINI_PRO_MODEL", "gemini-2.5-pro", log),
		FlashModel:   utils.GetEnv("GEMINI_FLASH_MODEL", "gemini-2.5-flash", log),
	}
	if origins := os.Getenv("ALLOW_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, o)
			}
		}
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
		log.Info("Applied config file overrides", "path", path)
	}

	switch cfg.StoreBackend {
	case StoreMemory, StoreRedis, StorePostgres:
	default:
		return cfg, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	return cfg, nil
}
