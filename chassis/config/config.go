package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// AppConfig ...
type AppConfig struct {
	Storage struct {
		DSN string `yaml:"dsn"`
	}
	AWS struct {
		Region             string `yaml:"region"`
		CredentialsFile    string `yaml:"credentialsFile"`
		CredentialsProfile string `yaml:"credentialsProfile"`
	}
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	}
	Grafana struct {
		URL         string `yaml:"url"`
		AdminAPIKey string `yaml:"adminAPIKey"`
	}
	AgentStorage struct {
		Bucket string `yaml:"bucket"`
		Region string `yaml:"region"`
	}
	Provisioner struct {
		Queue struct {
			Name    string `yaml:"name"`
			URL     string `yaml:"url"`
			Retries int    `yaml:"readRetries"`
		}
		Workers        int    `yaml:"workers"`
		LogLevel       string `yaml:"loglevel"`
		RetentionHours int    `yaml:"retentionHours"`
	}
}

// Read ...
func Read() (*AppConfig, error) {
	filename := os.Getenv("CFG_PATH")
	cfg := &AppConfig{}
	buff, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(buff, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
