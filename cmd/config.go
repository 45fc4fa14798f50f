package main

import (
	"net"
	"os"
	"strconv"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	envVarPrefix     = "RINGQ"
	DefaultHost      = "localhost"
	DefaultPort      = "5678"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

type Config struct {
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	LogLevel  string `split_words:"true" yaml:"logLevel"`
	LogFormat string `split_words:"true" yaml:"logFormat"`
	TraceFile string `split_words:"true" yaml:"traceFile"`
}

func defaultConfig() Config {
	return Config{
		Host:      DefaultHost,
		Port:      DefaultPort,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// LoadConfig reads the defaults, then the YAML file at path and then the
// RINGQ_* environment variables, each one overriding the previous. With an
// empty path RINGQ_CONFIG_FILE is used, and a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	c := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(envVarPrefix + "_CONFIG_FILE")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, errors.Wrap(err, "reading config file")
			}
		} else if err := yaml.UnmarshalStrict(data, &c); err != nil {
			return nil, errors.Wrap(err, "unmarshaling config file")
		}
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, errors.Wrap(err, "parsing environment variables")
	}

	return &c, nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port < 0 || port > 65535 {
		return errors.Errorf("invalid port '%s'", c.Port)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return errors.Errorf("invalid log format '%s', expected text or json", c.LogFormat)
	}
	return nil
}

// NewLogger builds the logger described by c. c must be valid.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
