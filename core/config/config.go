package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"medledger/core/chain"
)

// EnvPrefix prefixes every environment override, e.g. MEDLEDGER_DATA_DIR.
const EnvPrefix = "MEDLEDGER"

// Config is the resolved runtime configuration.
type Config struct {
	Data struct {
		Dir           string `mapstructure:"dir"`
		ChainFile     string `mapstructure:"chain_file"`
		BackupFile    string `mapstructure:"backup_file"`
		AuditLog      string `mapstructure:"audit_log"`
		CorruptPolicy string `mapstructure:"corrupt_policy"`
	} `mapstructure:"data"`
	API struct {
		Listen       string        `mapstructure:"listen"`
		ExportDir    string        `mapstructure:"export_dir"`
		JWTSecret    string        `mapstructure:"jwt_secret"`
		EnableHTTPS  bool          `mapstructure:"enable_https"`
		TLSCert      string        `mapstructure:"tls_cert"`
		TLSKey       string        `mapstructure:"tls_key"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"api"`
	Log struct {
		Level   string `mapstructure:"level"`
		Stdout  bool   `mapstructure:"stdout"`
		File    bool   `mapstructure:"file"`
		Dir     string `mapstructure:"dir"`
		ByLevel bool   `mapstructure:"by_level"`
	} `mapstructure:"log"`
	CLI struct {
		ServerURL string `mapstructure:"server_url"`
	} `mapstructure:"cli"`
}

// SetDefaults registers every key so env overrides resolve even without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.dir", ".")
	v.SetDefault("data.chain_file", "blockchain_data.json")
	v.SetDefault("data.backup_file", "blockchain_backup.json")
	v.SetDefault("data.audit_log", "blockchain_log.txt")
	v.SetDefault("data.corrupt_policy", string(chain.FailOpen))

	v.SetDefault("api.listen", ":8080")
	v.SetDefault("api.export_dir", "exports")
	v.SetDefault("api.jwt_secret", "")
	v.SetDefault("api.enable_https", false)
	v.SetDefault("api.tls_cert", "")
	v.SetDefault("api.tls_key", "")
	v.SetDefault("api.read_timeout", 10*time.Second)
	v.SetDefault("api.write_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.stdout", true)
	v.SetDefault("log.file", false)
	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.by_level", false)

	v.SetDefault("cli.server_url", "http://localhost:8080")
}

// New returns a viper instance with defaults, env binding and, when
// configFile is not empty, the given config file.
func New(configFile string) (*viper.Viper, error) {
	// .env is optional; values already in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}
	return v, nil
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if _, err := chain.ParseCorruptPolicy(cfg.Data.CorruptPolicy); err != nil {
		return nil, err
	}
	if cfg.API.EnableHTTPS && (cfg.API.TLSCert == "" || cfg.API.TLSKey == "") {
		return nil, errors.New("config: api.enable_https requires api.tls_cert and api.tls_key")
	}
	return &cfg, nil
}

// Load is New followed by FromViper.
func Load(configFile string) (*Config, error) {
	v, err := New(configFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Data.Dir, name)
}

func (c *Config) ChainPath() string    { return c.resolve(c.Data.ChainFile) }
func (c *Config) BackupPath() string   { return c.resolve(c.Data.BackupFile) }
func (c *Config) AuditLogPath() string { return c.resolve(c.Data.AuditLog) }
func (c *Config) ExportDir() string    { return c.resolve(c.API.ExportDir) }

// Policy returns the parsed corrupt-artifact policy.
func (c *Config) Policy() chain.CorruptPolicy {
	p, _ := chain.ParseCorruptPolicy(c.Data.CorruptPolicy)
	return p
}
