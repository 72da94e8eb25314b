package config

import (
	"encoding/json"
	"os"
	"strconv"
)

type Config struct {
	Ledger     DatabaseConfig   `json:"ledger"`
	Redis      RedisConfig      `json:"redis"`
	Queue      QueueConfig      `json:"queue"`
	Terminal   TerminalConfig   `json:"terminal"`
	Monitoring MonitoringConfig `json:"monitoring"`
}

type DatabaseConfig struct {
	Driver         string `json:"driver"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	User           string `json:"user"`
	Password       string `json:"password"`
	DBName         string `json:"dbname"`
	SSLMode        string `json:"sslmode"`
	MigrationsPath string `json:"migrations_path"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type QueueConfig struct {
	Path string `json:"path"`
}

type TerminalConfig struct {
	ID                  string `json:"id"`
	OrgScope            string `json:"org_scope"`
	CurrencySymbol      string `json:"currency_symbol"`
	SyncIntervalSeconds int    `json:"sync_interval_seconds"`
	ProductCacheTTLSecs int    `json:"product_cache_ttl_seconds"`
}

type MonitoringConfig struct {
	Addr string `json:"addr"`
}

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *DatabaseConfig) GetDSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}
