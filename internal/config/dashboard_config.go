package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DashboardConfig tunes the rendering side of the metrics engine. It is
// hot-reloadable so operators can adjust it without restarting.
type DashboardConfig struct {
	TopNBreakdown   int           `mapstructure:"topNBreakdown"`
	RefreshDebounce time.Duration `mapstructure:"refreshDebounce"`
	CompareDefault  bool          `mapstructure:"compareDefault"`
	CacheTTL        time.Duration `mapstructure:"cacheTTL"`
}

func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		TopNBreakdown:   5,
		RefreshDebounce: 300 * time.Millisecond,
		CompareDefault:  false,
		CacheTTL:        30 * time.Second,
	}
}

type DashboardConfigHolder struct {
	current atomic.Value // holds DashboardConfig
}

func NewDashboardConfigHolder() (*DashboardConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("dashboard")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/metrica/config") // Volume-mounted config
	v.AddConfigPath("/etc/metrica")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("METRICA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDashboardConfig()
	v.SetDefault("dashboard.topNBreakdown", defaults.TopNBreakdown)
	v.SetDefault("dashboard.refreshDebounce", defaults.RefreshDebounce)
	v.SetDefault("dashboard.compareDefault", defaults.CompareDefault)
	v.SetDefault("dashboard.cacheTTL", defaults.CacheTTL)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg DashboardConfig
	if err := v.UnmarshalKey("dashboard", &cfg); err != nil {
		return nil, err
	}
	if err := validateDashboardConfig(cfg); err != nil {
		return nil, err
	}

	holder := &DashboardConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DashboardConfig
		if err := v.UnmarshalKey("dashboard", &updated); err != nil {
			log.Printf("[dashboard-config] reload failed: %v", err)
			return
		}
		if err := validateDashboardConfig(updated); err != nil {
			log.Printf("[dashboard-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[dashboard-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *DashboardConfigHolder) Get() DashboardConfig {
	return h.current.Load().(DashboardConfig)
}

func validateDashboardConfig(cfg DashboardConfig) error {
	if cfg.TopNBreakdown <= 0 {
		return errors.New("dashboard.topNBreakdown must be positive")
	}
	if cfg.RefreshDebounce <= 0 {
		return errors.New("dashboard.refreshDebounce must be positive")
	}
	return nil
}
