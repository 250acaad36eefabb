// Copyright 2024 reelrec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration for the recommendation service.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Server    ServerConfig    `mapstructure:"server"`
}

// DatabaseConfig is the configuration for the data store.
type DatabaseConfig struct {
	// database for users, items and ratings
	DataStore string `mapstructure:"data_store"`
	// prefix for table names
	TablePrefix string `mapstructure:"table_prefix"`
}

// RecommendConfig is the configuration of the recommendation engine.
type RecommendConfig struct {
	// number of neighbors whose ratings are aggregated into a prediction
	TopK int `mapstructure:"top_k"`
	// minimum cosine similarity for a neighbor to be used in prediction
	MinSimilarity float64 `mapstructure:"min_similarity"`
	// number of recommendations returned when the caller passes no limit
	DefaultLimit int `mapstructure:"default_limit"`
}

// ServerConfig is the configuration of the REST server.
type ServerConfig struct {
	HttpHost string `mapstructure:"http_host"`
	HttpPort int    `mapstructure:"http_port"`
}

// GetDefaultConfig returns a configuration with default values.
func GetDefaultConfig() *Config {
	return &Config{
		Recommend: RecommendConfig{
			TopK:          5,
			MinSimilarity: 0.1,
			DefaultLimit:  5,
		},
		Server: ServerConfig{
			HttpHost: "127.0.0.1",
			HttpPort: 8087,
		},
	}
}

func setDefault() {
	defaultConfig := GetDefaultConfig()
	viper.SetDefault("recommend.top_k", defaultConfig.Recommend.TopK)
	viper.SetDefault("recommend.min_similarity", defaultConfig.Recommend.MinSimilarity)
	viper.SetDefault("recommend.default_limit", defaultConfig.Recommend.DefaultLimit)
	viper.SetDefault("server.http_host", defaultConfig.Server.HttpHost)
	viper.SetDefault("server.http_port", defaultConfig.Server.HttpPort)
}

// LoadConfig loads the configuration from a toml file. Environment variables
// of the form REELREC_SECTION_KEY override file values.
func LoadConfig(path string) (*Config, error) {
	setDefault()
	viper.SetConfigType("toml")
	viper.SetConfigFile(path)
	viper.SetEnvPrefix("reelrec")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}
	conf := new(Config)
	if err := viper.Unmarshal(conf); err != nil {
		return nil, errors.Trace(err)
	}
	conf.validate()
	return conf, nil
}

func (config *Config) validate() {
	validatePositive("recommend.top_k", config.Recommend.TopK)
	validatePositive("recommend.default_limit", config.Recommend.DefaultLimit)
	validateInRange("recommend.min_similarity", config.Recommend.MinSimilarity, 0, 1)
	validatePositive("server.http_port", config.Server.HttpPort)
}
