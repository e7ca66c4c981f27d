package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/chicane-league/chicane/internal/stats"
)

type HeaderConfig struct {
	Name  string `toml:"name"`
	Value string `toml:"value"`
}

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		RedisURL         string `toml:"redis_url"`
		TokenHeader      string `toml:"token_header"`
		TokenKeyTemplate string `toml:"token_key_template"`
	} `toml:"auth"`

	API struct {
		UserIDHeader    string         `toml:"user_id_header"`
		RequiredHeaders []HeaderConfig `toml:"required_headers"`
	} `toml:"api"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Leaderboard struct {
		DefaultLimit int `toml:"default_limit"`
		MaxLimit     int `toml:"max_limit"`
	} `toml:"leaderboard"`

	Trend stats.TrendConfig `toml:"trend"`

	GSheet        map[string][]GSheetConfig `toml:"gsheet"`
	EmojiVariants []string                  `toml:"emoji_variants"`
}

type GSheetConfig struct {
	CredentialsPath string `toml:"credentials_path"`
	SheetID         string `toml:"sheet_id"`
	SheetName       string `toml:"sheet_name"`
	Schedule        string `toml:"schedule"`
	UsersRange      string `toml:"users_range"`
	PointsColumn    string `toml:"points_column"`
	TimestampRange  string `toml:"timestamp_range"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}

	if config.Leaderboard.DefaultLimit == 0 {
		config.Leaderboard.DefaultLimit = 20
	}
	if config.Leaderboard.MaxLimit == 0 {
		config.Leaderboard.MaxLimit = 100
	}

	logger.Debug.Printf("Loaded trend config: %+v", config.Trend)

	return &config, nil
}
