package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort   string
	JWTSecret string
	// Gin framework configuration
	GinMode string
	GinPath string

	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	// Redis for caching / fast-path cooldowns
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	RateLimitPerMinute int
	AllowedOrigins     []string
	AdminUsernames     []string

	// Engine policy
	DefaultTimezone    string
	WeekStart          string // "monday" or "sunday"
	CheckXPBase        int
	CheckDailyCap      int
	CheckMinSpacingSec int

	// Multiplier policy. Values are full multipliers (1.2 = +20%); the window
	// is how long a triggered grant stays active.
	WeekendBonusValue      float64
	WelcomeBackGapDays     int
	WelcomeBackValue       float64
	WelcomeBackWindowHours int
	MilestoneInterval      int
	MilestoneValue         float64
	MilestoneWindowHours   int
	PerfectWeekThreshold   float64
	PerfectWeekValue       float64
	PerfectWeekWindowHours int
	// MultiplierCap bounds the combined multiplier; <= 1 disables the cap.
	MultiplierCap float64
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// WeekStartDay maps the configured week start onto time.Weekday.
func (c AppConfig) WeekStartDay() time.Weekday {
	if strings.EqualFold(c.WeekStart, "sunday") {
		return time.Sunday
	}
	return time.Monday
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	dec := json.NewDecoder(f)
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			case json.Number:
				i, _ := t.Int64()
				return int(i)
			}
		}
		return 0
	}
	getFloat := func(m map[string]any, key string) float64 {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return t
			case int:
				return float64(t)
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.JWTSecret = getString(app, "JWTSecret")
		if v := getInt(app, "RateLimitPerMinute"); v != 0 {
			out.RateLimitPerMinute = v
		}
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
		if list := getStringSlice(app, "AdminUsernames"); len(list) > 0 {
			out.AdminUsernames = list
		}
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		if v := getString(g, "Mode"); v != "" {
			out.GinMode = v
		}
		if v := getString(g, "LogPath"); v != "" {
			out.GinPath = v
		}
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		if v := getInt(rds, "RedisPort"); v != 0 {
			out.RedisPort = v
		}
		if v := getInt(rds, "RedisDB"); v != 0 {
			out.RedisDB = v
		}
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		if v := getString(lg, "Level"); v != "" {
			out.LogLevel = v
		}
		if v := getString(lg, "Path"); v != "" {
			out.LogPath = v
		}
		if v := getInt(lg, "MaxSizeMB"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(lg, "MaxBackups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(lg, "MaxAgeDays"); v != 0 {
			out.LogMaxAgeDays = v
		}
		out.LogCompress = getBool(lg, "Compress")
	}

	if en, ok := raw["engine"].(map[string]any); ok {
		if v := getString(en, "DefaultTimezone"); v != "" {
			out.DefaultTimezone = v
		}
		if v := getString(en, "WeekStart"); v != "" {
			out.WeekStart = v
		}
		if v := getInt(en, "CheckXPBase"); v != 0 {
			out.CheckXPBase = v
		}
		if v := getInt(en, "CheckDailyCap"); v != 0 {
			out.CheckDailyCap = v
		}
		if v := getInt(en, "CheckMinSpacingSec"); v != 0 {
			out.CheckMinSpacingSec = v
		}
	}

	if mp, ok := raw["multipliers"].(map[string]any); ok {
		if v := getFloat(mp, "WeekendBonusValue"); v != 0 {
			out.WeekendBonusValue = v
		}
		if v := getInt(mp, "WelcomeBackGapDays"); v != 0 {
			out.WelcomeBackGapDays = v
		}
		if v := getFloat(mp, "WelcomeBackValue"); v != 0 {
			out.WelcomeBackValue = v
		}
		if v := getInt(mp, "WelcomeBackWindowHours"); v != 0 {
			out.WelcomeBackWindowHours = v
		}
		if v := getInt(mp, "MilestoneInterval"); v != 0 {
			out.MilestoneInterval = v
		}
		if v := getFloat(mp, "MilestoneValue"); v != 0 {
			out.MilestoneValue = v
		}
		if v := getInt(mp, "MilestoneWindowHours"); v != 0 {
			out.MilestoneWindowHours = v
		}
		if v := getFloat(mp, "PerfectWeekThreshold"); v != 0 {
			out.PerfectWeekThreshold = v
		}
		if v := getFloat(mp, "PerfectWeekValue"); v != 0 {
			out.PerfectWeekValue = v
		}
		if v := getInt(mp, "PerfectWeekWindowHours"); v != 0 {
			out.PerfectWeekWindowHours = v
		}
		if v := getFloat(mp, "MultiplierCap"); v != 0 {
			out.MultiplierCap = v
		}
	}

	// Flat keys kept for older deployments.
	if v, ok := raw["AppPort"]; ok && out.AppPort == "" {
		out.AppPort, _ = v.(string)
	}
	if v, ok := raw["JWTSecret"]; ok && out.JWTSecret == "" {
		out.JWTSecret, _ = v.(string)
	}
	if v, ok := raw["DatabaseURI"]; ok && out.DatabaseURI == "" {
		out.DatabaseURI, _ = v.(string)
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "habitloop"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DefaultTimezone == "" {
		c.DefaultTimezone = "UTC"
	}
	if c.WeekStart == "" {
		c.WeekStart = "monday"
	}
	if c.CheckXPBase == 0 {
		c.CheckXPBase = 10
	}
	if c.CheckDailyCap == 0 {
		c.CheckDailyCap = 3
	}
	if c.CheckMinSpacingSec == 0 {
		c.CheckMinSpacingSec = 10
	}
	if c.WeekendBonusValue == 0 {
		c.WeekendBonusValue = 1.2
	}
	if c.WelcomeBackGapDays == 0 {
		c.WelcomeBackGapDays = 7
	}
	if c.WelcomeBackValue == 0 {
		c.WelcomeBackValue = 1.5
	}
	if c.WelcomeBackWindowHours == 0 {
		c.WelcomeBackWindowHours = 72
	}
	if c.MilestoneInterval == 0 {
		c.MilestoneInterval = 5
	}
	if c.MilestoneValue == 0 {
		c.MilestoneValue = 1.25
	}
	if c.MilestoneWindowHours == 0 {
		c.MilestoneWindowHours = 48
	}
	if c.PerfectWeekThreshold == 0 {
		c.PerfectWeekThreshold = 0.9
	}
	if c.PerfectWeekValue == 0 {
		c.PerfectWeekValue = 1.3
	}
	if c.PerfectWeekWindowHours == 0 {
		c.PerfectWeekWindowHours = 168
	}
	// MultiplierCap keeps its zero value: stacking is uncapped unless configured.
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("JWT_SECRET", ""); v != "" {
		c.JWTSecret = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("DATABASE_URI", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("DB_HOST", ""); v != "" {
		c.DBHost = v
	}
	if v := getEnv("DB_PORT", ""); v != "" {
		c.DBPort = v
	}
	if v := getEnv("DB_USER", ""); v != "" {
		c.DBUser = v
	}
	if v := getEnv("DB_PASSWORD", ""); v != "" {
		c.DBPassword = v
	}
	if v := getEnv("DB_NAME", ""); v != "" {
		c.DBName = v
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := getEnv("ADMIN_USERNAMES", ""); v != "" {
		c.AdminUsernames = splitAndTrim(v)
	}
	if v := getEnv("DEFAULT_TIMEZONE", ""); v != "" {
		c.DefaultTimezone = v
	}
	if v := getEnv("WEEK_START", ""); v != "" {
		c.WeekStart = v
	}
	if v := getEnv("CHECK_XP_BASE", ""); v != "" {
		c.CheckXPBase = mustParseInt(v)
	}
	if v := getEnv("CHECK_DAILY_CAP", ""); v != "" {
		c.CheckDailyCap = mustParseInt(v)
	}
	if v := getEnv("CHECK_MIN_SPACING_SEC", ""); v != "" {
		c.CheckMinSpacingSec = mustParseInt(v)
	}
	if v := getEnv("WEEKEND_BONUS_VALUE", ""); v != "" {
		c.WeekendBonusValue = mustParseFloat(v)
	}
	if v := getEnv("WELCOME_BACK_GAP_DAYS", ""); v != "" {
		c.WelcomeBackGapDays = mustParseInt(v)
	}
	if v := getEnv("WELCOME_BACK_VALUE", ""); v != "" {
		c.WelcomeBackValue = mustParseFloat(v)
	}
	if v := getEnv("WELCOME_BACK_WINDOW_HOURS", ""); v != "" {
		c.WelcomeBackWindowHours = mustParseInt(v)
	}
	if v := getEnv("MILESTONE_INTERVAL", ""); v != "" {
		c.MilestoneInterval = mustParseInt(v)
	}
	if v := getEnv("MILESTONE_VALUE", ""); v != "" {
		c.MilestoneValue = mustParseFloat(v)
	}
	if v := getEnv("MILESTONE_WINDOW_HOURS", ""); v != "" {
		c.MilestoneWindowHours = mustParseInt(v)
	}
	if v := getEnv("PERFECT_WEEK_THRESHOLD", ""); v != "" {
		c.PerfectWeekThreshold = mustParseFloat(v)
	}
	if v := getEnv("PERFECT_WEEK_VALUE", ""); v != "" {
		c.PerfectWeekValue = mustParseFloat(v)
	}
	if v := getEnv("PERFECT_WEEK_WINDOW_HOURS", ""); v != "" {
		c.PerfectWeekWindowHours = mustParseInt(v)
	}
	if v := getEnv("MULTIPLIER_CAP", ""); v != "" {
		c.MultiplierCap = mustParseFloat(v)
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func mustParseFloat(val string) float64 {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		log.Fatalf("invalid float value %s: %v", val, err)
	}
	return f
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
