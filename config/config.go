package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port  string      `mapstructure:"port"`
	SS58  SS58Config  `mapstructure:"ss58"`
	Mongo MongoConfig `mapstructure:"mongo"`
	Redis RedisConfig `mapstructure:"redis"`
	Eth   EthConfig   `mapstructure:"eth"`
}

type SS58Config struct {
	Prefix uint8 `mapstructure:"prefix"`
}

type MongoConfig struct {
	// URI left empty runs the registry on in-memory stores
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	// Addr left empty disables the user lookup cache
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type EthConfig struct {
	RPC string `mapstructure:"rpc"`
	// BridgeContract is fixed configuration, never derived
	BridgeContract string `mapstructure:"bridge_contract"`
	ChainID        int64  `mapstructure:"chain_id"`
	MainNet        bool   `mapstructure:"main_net"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// ENV 覆盖 YAML
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("port", "8080")
	v.SetDefault("mongo.database", "bridge_service")
	v.SetDefault("ss58.prefix", 42)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
