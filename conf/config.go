package conf

import (
	"gopkg.in/ini.v1"

	"github.com/litescan/litescan/logger"
)

// Cfg holds the runtime settings for the reader. Everything has a usable
// default; a config file only overrides.
type Cfg struct {
	Raw *ini.File

	// logs
	LogError string `default:"" yaml:"log_error" json:"log_error,omitempty"`
	LogInfos string `default:"" yaml:"log_infos" json:"log_infos,omitempty"`
	LogLevel string `default:"warn" yaml:"log_level" json:"log_level,omitempty"`

	// decode guards
	MaxPageNumber uint32 `default:"1000000" yaml:"max_page_number" json:"max_page_number,omitempty"`
	MaxBTreeDepth int    `default:"64" yaml:"max_btree_depth" json:"max_btree_depth,omitempty"`
}

// NewCfg returns the default configuration.
func NewCfg() *Cfg {
	return &Cfg{
		Raw:           ini.Empty(),
		LogLevel:      "warn",
		MaxPageNumber: 1000000,
		MaxBTreeDepth: 64,
	}
}

// Load merges the [litescan] section of an ini file over the defaults.
func (cfg *Cfg) Load(path string) error {
	raw, err := ini.Load(path)
	if err != nil {
		return err
	}
	cfg.Raw = raw

	section := raw.Section("litescan")
	cfg.LogError = section.Key("log_error").MustString(cfg.LogError)
	cfg.LogInfos = section.Key("log_infos").MustString(cfg.LogInfos)
	cfg.LogLevel = section.Key("log_level").MustString(cfg.LogLevel)
	cfg.MaxPageNumber = uint32(section.Key("max_page_number").MustUint(uint(cfg.MaxPageNumber)))
	cfg.MaxBTreeDepth = section.Key("max_btree_depth").MustInt(cfg.MaxBTreeDepth)

	logger.Debugf("loaded config from %s: level=%s max_page=%d", path, cfg.LogLevel, cfg.MaxPageNumber)
	return nil
}

// LogConfig converts the log settings into the logger package's config.
func (cfg *Cfg) LogConfig() logger.LogConfig {
	return logger.LogConfig{
		ErrorLogPath: cfg.LogError,
		InfoLogPath:  cfg.LogInfos,
		LogLevel:     cfg.LogLevel,
	}
}
