package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = ""

// Config is the full service configuration, loaded from the environment.
type Config struct {
	App    AppConfig
	Store  StoreConfig
	Redis  RedisConfig
	Backup BackupConfig
	Jobs   JobsConfig
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Port     string `envconfig:"LABSTOCK_PORT" default:"8080"`
	LogLevel string `envconfig:"LABSTOCK_LOG_LEVEL" default:"info"`
}

type StoreConfig struct {
	// Roots of the two snapshot stores. Whole-file JSON artifacts, one
	// single-writer store each.
	CurrentDir string `envconfig:"LABSTOCK_CURRENT_DIR" default:"./data/inventario"`
	HistoryDir string `envconfig:"LABSTOCK_HISTORY_DIR" default:"./data/historico"`
	// Static panel catalog listing the title product of each lot group.
	CatalogPath string `envconfig:"LABSTOCK_CATALOG" default:"./data/catalogo.json"`

	CurrentPrefix string `envconfig:"LABSTOCK_CURRENT_PREFIX" default:"inventario"`
	HistoryPrefix string `envconfig:"LABSTOCK_HISTORY_PREFIX" default:"historico"`

	// Name markers that keep each store's auto-discovery from picking up a
	// file manually uploaded for the other store.
	CurrentExclude string `envconfig:"LABSTOCK_CURRENT_EXCLUDE" default:"subido_historico"`
	HistoryExclude string `envconfig:"LABSTOCK_HISTORY_EXCLUDE" default:"subido_inventario"`
}

type RedisConfig struct {
	Addr     string `envconfig:"LABSTOCK_REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"LABSTOCK_REDIS_PASSWORD"`
	DB       int    `envconfig:"LABSTOCK_REDIS_DB" default:"0"`

	PanelViewTTL time.Duration `envconfig:"LABSTOCK_PANEL_VIEW_TTL" default:"5m"`
}

type BackupConfig struct {
	Enabled   bool   `envconfig:"LABSTOCK_BACKUP_ENABLED" default:"false"`
	Endpoint  string `envconfig:"LABSTOCK_BACKUP_ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"LABSTOCK_BACKUP_ACCESS_KEY" default:"minioadmin"`
	SecretKey string `envconfig:"LABSTOCK_BACKUP_SECRET_KEY" default:"minioadmin"`
	Bucket    string `envconfig:"LABSTOCK_BACKUP_BUCKET" default:"labstock-snapshots"`
	UseSSL    bool   `envconfig:"LABSTOCK_BACKUP_SSL" default:"false"`
}

type JobsConfig struct {
	Enabled          bool          `envconfig:"LABSTOCK_JOBS_ENABLED" default:"true"`
	SnapshotInterval time.Duration `envconfig:"LABSTOCK_SNAPSHOT_INTERVAL" default:"24h"`
	AlarmInterval    time.Duration `envconfig:"LABSTOCK_ALARM_INTERVAL" default:"30m"`
}
