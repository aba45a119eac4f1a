package config

import "time"

// Config is the root application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Source SourceConfig `yaml:"source"`
	Quiz   QuizConfig   `yaml:"quiz"`
	Log    LogConfig    `yaml:"log"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	Path      string `yaml:"path"      env:"LEXIQUIZ_DB"        env-default:"lexiquiz.db"`
	Ephemeral bool   `yaml:"ephemeral" env:"LEXIQUIZ_EPHEMERAL" env-default:"false"`
	Prefix    string `yaml:"prefix"    env:"LEXIQUIZ_PREFIX"    env-default:"vocabQuiz_"`
}

// Source kinds.
const (
	SourceHTTP    = "http"
	SourceDir     = "dir"
	SourceBuiltin = "builtin"
)

// SourceConfig selects where word banks come from.
type SourceConfig struct {
	Kind      string        `yaml:"kind"       env:"LEXIQUIZ_SOURCE"         env-default:"builtin"`
	URL       string        `yaml:"url"        env:"LEXIQUIZ_SOURCE_URL"`
	Dir       string        `yaml:"dir"        env:"LEXIQUIZ_SOURCE_DIR"     env-default:"data"`
	Timeout   time.Duration `yaml:"timeout"    env:"LEXIQUIZ_SOURCE_TIMEOUT" env-default:"10s"`
	UserAgent string        `yaml:"user_agent" env:"LEXIQUIZ_USER_AGENT"     env-default:"lexiquiz/1.0"`
	// Readings fills missing pronunciations of Japanese terms.
	Readings bool `yaml:"readings" env:"LEXIQUIZ_READINGS" env-default:"false"`
}

// QuizConfig holds gameplay settings.
type QuizConfig struct {
	Difficulty     string        `yaml:"difficulty"      env:"LEXIQUIZ_DIFFICULTY"      env-default:"easy"`
	Category       string        `yaml:"category"        env:"LEXIQUIZ_CATEGORY"        env-default:"general"`
	TimeLimit      time.Duration `yaml:"time_limit"      env:"LEXIQUIZ_TIME_LIMIT"      env-default:"0s"`
	PreloadWorkers int           `yaml:"preload_workers" env:"LEXIQUIZ_PRELOAD_WORKERS" env-default:"3"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"warn"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
