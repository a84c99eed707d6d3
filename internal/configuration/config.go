package configuration

import (
	"time"

	"consumerwise/internal/logger"

	"github.com/BurntSushi/toml"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/pkg/errors"
)

type Config struct {
	ServerAddress   string
	DatabaseURI     string
	RedisURI        string
	CloudinaryURL   string
	FCMKey          string
	SessionDuration time.Duration
	LogLevel        logger.Level
	LogToFile       bool
	AuthSecretKey   jwk.Key
}

type tomlConfig struct {
	ServerAddress   string `toml:"server_address"`
	DatabaseURI     string `toml:"database_uri"`
	RedisURI        string `toml:"redis_uri"`
	CloudinaryURL   string `toml:"cloudinary_url"`
	FCMKey          string `toml:"fcm_key"`
	SessionDuration string `toml:"session_duration"`
	LogLevel        string `toml:"log_level"`
	LogToFile       bool   `toml:"log_to_file"`
	AuthSecretKey   string `toml:"auth_secret_key"`
}

func GetConfig(path string) (*Config, error) {
	var tc tomlConfig
	_, err := toml.DecodeFile(path, &tc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
	}

	if tc.ServerAddress == "" {
		tc.ServerAddress = "localhost:8888"
	}

	if tc.DatabaseURI == "" {
		tc.DatabaseURI = "mongodb://localhost:27017"
	}

	if tc.RedisURI == "" {
		tc.RedisURI = "redis://localhost:6379"
	}

	if tc.SessionDuration == "" {
		tc.SessionDuration = "1h"
	}
	sessionDuration, err := time.ParseDuration(tc.SessionDuration)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse session_duration: %s", tc.SessionDuration)
	}
	if sessionDuration < time.Minute {
		return nil, errors.Errorf("session_duration too short (%v), minimum duration: 1m", sessionDuration)
	}

	if tc.LogLevel == "" {
		tc.LogLevel = "INFO"
	}
	logLevel, err := logger.ParseLevel(tc.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse log_level: %s", tc.LogLevel)
	}

	if tc.AuthSecretKey == "" {
		return nil, errors.New("auth_secret_key is not set")
	}

	authSecretKey, err := jwk.FromRaw([]byte(tc.AuthSecretKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create key from auth_secret_key")
	}

	return &Config{
		ServerAddress:   tc.ServerAddress,
		DatabaseURI:     tc.DatabaseURI,
		RedisURI:        tc.RedisURI,
		CloudinaryURL:   tc.CloudinaryURL,
		FCMKey:          tc.FCMKey,
		SessionDuration: sessionDuration,
		LogLevel:        logLevel,
		LogToFile:       tc.LogToFile,
		AuthSecretKey:   authSecretKey,
	}, nil
}
