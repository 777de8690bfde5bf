package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/botsync/internal/paths"
	"github.com/mesh-intelligence/botsync/internal/syncer"
	"github.com/mesh-intelligence/botsync/internal/xcs"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyDataDir         = "data_dir"
	cfgKeyLogLevel        = "log_level"
	cfgKeyPollInterval    = "poll_interval"
	cfgKeyPollConcurrency = "poll_concurrency"

	defaultLogLevel        = "info"
	defaultPollConcurrency = 2
)

// Settings is the configuration the commands run with.
type Settings struct {
	DataDir         string           `mapstructure:"data_dir"`
	LogLevel        string           `mapstructure:"log_level"`
	PollInterval    time.Duration    `mapstructure:"poll_interval"`
	PollConcurrency int              `mapstructure:"poll_concurrency"`
	Servers         []ServerSettings `mapstructure:"servers"`
}

// ServerSettings locates one build server. The password is read from the
// environment variable PasswordEnv names, never from the file.
type ServerSettings struct {
	FQDN               string `mapstructure:"fqdn" yaml:"fqdn"`
	Port               int    `mapstructure:"port" yaml:"port,omitempty"`
	Scheme             string `mapstructure:"scheme" yaml:"scheme,omitempty"`
	Username           string `mapstructure:"username" yaml:"username,omitempty"`
	PasswordEnv        string `mapstructure:"password_env" yaml:"password_env,omitempty"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify,omitempty"`
	Timeout            string `mapstructure:"timeout" yaml:"timeout,omitempty"`
}

// Endpoint converts the settings to a transport endpoint.
func (s ServerSettings) Endpoint() (xcs.Endpoint, error) {
	ep := xcs.Endpoint{
		FQDN:               s.FQDN,
		Port:               s.Port,
		Scheme:             s.Scheme,
		Username:           s.Username,
		InsecureSkipVerify: s.InsecureSkipVerify,
	}
	if s.PasswordEnv != "" {
		ep.Password = os.Getenv(s.PasswordEnv)
	}
	if s.Timeout != "" {
		d, err := time.ParseDuration(s.Timeout)
		if err != nil {
			return xcs.Endpoint{}, fmt.Errorf("server %s: timeout: %w", s.FQDN, err)
		}
		ep.Timeout = d
	}
	return ep, nil
}

// server returns the settings for fqdn.
func (s Settings) server(fqdn string) (ServerSettings, bool) {
	for _, srv := range s.Servers {
		if srv.FQDN == fqdn {
			return srv, true
		}
	}
	return ServerSettings{}, false
}

// loadSettings reads config.yaml from configDir using Viper. A missing file
// is not an error. BOTSYNC_LOG_LEVEL, BOTSYNC_POLL_INTERVAL and
// BOTSYNC_POLL_CONCURRENCY override the file.
func loadSettings(configDir string) (Settings, error) {
	v := viper.New()
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyPollInterval, syncer.DefaultPollInterval)
	v.SetDefault(cfgKeyPollConcurrency, defaultPollConcurrency)
	v.SetEnvPrefix("BOTSYNC")
	for _, key := range []string{cfgKeyLogLevel, cfgKeyPollInterval, cfgKeyPollConcurrency} {
		if err := v.BindEnv(key); err != nil {
			return Settings{}, err
		}
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	return s, nil
}

// configFile is the structure written to config.yaml.
type configFile struct {
	DataDir         string           `yaml:"data_dir,omitempty"`
	LogLevel        string           `yaml:"log_level,omitempty"`
	PollInterval    string           `yaml:"poll_interval,omitempty"`
	PollConcurrency int              `yaml:"poll_concurrency,omitempty"`
	Servers         []ServerSettings `yaml:"servers,omitempty"`
}

func defaultConfigFile(dataDir string) configFile {
	return configFile{
		DataDir:         dataDir,
		LogLevel:        defaultLogLevel,
		PollInterval:    syncer.DefaultPollInterval.String(),
		PollConcurrency: defaultPollConcurrency,
	}
}

// readConfigFile reads config.yaml from configDir. A missing file yields
// the zero configFile.
func readConfigFile(configDir string) (configFile, error) {
	var cfg configFile
	data, err := os.ReadFile(paths.ConfigFile(configDir))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", paths.ConfigFileName, err)
	}
	return cfg, nil
}

// writeConfigFile replaces config.yaml in configDir.
func writeConfigFile(configDir string, cfg configFile) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(paths.ConfigFile(configDir), data, 0o644)
}

// putServer adds s to cfg, replacing any entry with the same FQDN.
func (c *configFile) putServer(s ServerSettings) {
	for i := range c.Servers {
		if c.Servers[i].FQDN == s.FQDN {
			c.Servers[i] = s
			return
		}
	}
	c.Servers = append(c.Servers, s)
}

// dropServer removes fqdn from cfg and reports whether it was there.
func (c *configFile) dropServer(fqdn string) bool {
	for i := range c.Servers {
		if c.Servers[i].FQDN == fqdn {
			c.Servers = append(c.Servers[:i], c.Servers[i+1:]...)
			return true
		}
	}
	return false
}
