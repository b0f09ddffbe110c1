package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type APIConfig struct {
	BaseURL       string  `json:"base_url"`
	Token         string  `json:"token"`
	TimeoutMS     int     `json:"timeout_ms"`
	RatePerSecond float64 `json:"rate_per_second"`
	Burst         int     `json:"burst"`
}

type UIConfig struct {
	Locale string `json:"locale"`
	Theme  string `json:"theme"`
}

type CacheConfig struct {
	TTLSeconds int  `json:"ttl_seconds"`
	Persist    bool `json:"persist"`
}

type StorageConfig struct {
	BaseDir string `json:"base_dir"`
}

type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Config struct {
	API     APIConfig     `json:"api"`
	UI      UIConfig      `json:"ui"`
	Cache   CacheConfig   `json:"cache"`
	Storage StorageConfig `json:"storage"`
	Log     LogConfig     `json:"log"`
}

type fileCacheConfig struct {
	TTLSeconds *int  `json:"ttl_seconds"`
	Persist    *bool `json:"persist"`
}

type fileConfig struct {
	API     *APIConfig       `json:"api"`
	UI      *UIConfig        `json:"ui"`
	Cache   *fileCacheConfig `json:"cache"`
	Storage *StorageConfig   `json:"storage"`
	Log     *LogConfig       `json:"log"`
}

func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:       DefaultAPIBaseURL,
			TimeoutMS:     DefaultAPITimeoutMS,
			RatePerSecond: DefaultAPIRatePerSecond,
			Burst:         DefaultAPIBurst,
		},
		UI: UIConfig{
			Theme: "dark",
		},
		Cache: CacheConfig{
			TTLSeconds: DefaultCacheTTLSeconds,
			Persist:    true,
		},
		Storage: StorageConfig{
			BaseDir: "~/.msgdash",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load 按 默认值 → 全局配置 → 项目配置 → 环境变量 的顺序合并
// Load merges defaults → global config → project config → environment
func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("MSGDASH_CONFIG_PATH")); envPath != "" {
		resolvedPath = envPath
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return applyEnv(cfg)
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, ".msgdash", "config.json")}
}

func findProjectConfigPath() string {
	candidates := []string{
		"msgdash.config.json",
		".msgdash/config.json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	cleaned := stripJSONComments(data)
	var fileCfg fileConfig
	if err := json.Unmarshal(cleaned, &fileCfg); err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}
	applyFileConfig(cfg, fileCfg)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.API != nil {
		cfg.API = mergeAPI(cfg.API, *fc.API)
	}
	if fc.UI != nil {
		if strings.TrimSpace(fc.UI.Locale) != "" {
			cfg.UI.Locale = fc.UI.Locale
		}
		if strings.TrimSpace(fc.UI.Theme) != "" {
			cfg.UI.Theme = fc.UI.Theme
		}
	}
	if fc.Cache != nil {
		if fc.Cache.TTLSeconds != nil {
			cfg.Cache.TTLSeconds = *fc.Cache.TTLSeconds
		}
		if fc.Cache.Persist != nil {
			cfg.Cache.Persist = *fc.Cache.Persist
		}
	}
	if fc.Storage != nil && strings.TrimSpace(fc.Storage.BaseDir) != "" {
		cfg.Storage.BaseDir = fc.Storage.BaseDir
	}
	if fc.Log != nil {
		if strings.TrimSpace(fc.Log.Level) != "" {
			cfg.Log.Level = fc.Log.Level
		}
		if strings.TrimSpace(fc.Log.File) != "" {
			cfg.Log.File = fc.Log.File
		}
	}
}

func mergeAPI(base APIConfig, override APIConfig) APIConfig {
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = override.BaseURL
	}
	if strings.TrimSpace(override.Token) != "" {
		base.Token = override.Token
	}
	if override.TimeoutMS > 0 {
		base.TimeoutMS = override.TimeoutMS
	}
	if override.RatePerSecond > 0 {
		base.RatePerSecond = override.RatePerSecond
	}
	if override.Burst > 0 {
		base.Burst = override.Burst
	}
	return base
}

func normalize(cfg *Config) error {
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultAPIBaseURL
	}
	cfg.API.Token = strings.TrimSpace(cfg.API.Token)
	if cfg.API.TimeoutMS <= 0 {
		cfg.API.TimeoutMS = DefaultAPITimeoutMS
	}
	if cfg.API.RatePerSecond < 0 {
		cfg.API.RatePerSecond = 0
	}
	if cfg.API.Burst <= 0 {
		cfg.API.Burst = DefaultAPIBurst
	}

	cfg.UI.Locale = strings.TrimSpace(cfg.UI.Locale)
	cfg.UI.Theme = strings.ToLower(strings.TrimSpace(cfg.UI.Theme))
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = "dark"
	}

	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = DefaultCacheTTLSeconds
	}

	storageDir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return err
	}
	if storageDir == "" {
		storageDir, err = expandPath(Default().Storage.BaseDir)
		if err != nil {
			return err
		}
	}
	cfg.Storage.BaseDir = storageDir

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	logFile, err := expandPath(cfg.Log.File)
	if err != nil {
		return err
	}
	if logFile == "" {
		logFile = filepath.Join(cfg.Storage.BaseDir, "logs", "msgdash.log")
	}
	cfg.Log.File = logFile
	return nil
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("MSGDASH_API_URL")); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("MSGDASH_TOKEN")); v != "" {
		cfg.API.Token = v
	}
	if v := strings.TrimSpace(os.Getenv("MSGDASH_TIMEOUT_MS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid MSGDASH_TIMEOUT_MS: %q", v)
		}
		cfg.API.TimeoutMS = n
	}
	if v := strings.TrimSpace(os.Getenv("MSGDASH_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("MSGDASH_LANG")); v != "" {
		cfg.UI.Locale = v
	}
	if v := strings.TrimSpace(os.Getenv("MSGDASH_HOME")); v != "" {
		cfg.Storage.BaseDir = v
		// 日志默认跟随数据目录 / default log file follows the data dir
		cfg.Log.File = ""
	}

	return cfg, normalize(&cfg)
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			if c == '"' {
				state = stateString
				out.WriteByte(c)
				continue
			}
			if c == '/' && next == '/' {
				state = stateLineComment
				i++
				continue
			}
			if c == '/' && next == '*' {
				state = stateBlockComment
				i++
				continue
			}
			out.WriteByte(c)
		case stateString:
			out.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	return out.Bytes()
}
