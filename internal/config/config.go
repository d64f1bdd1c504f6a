package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig PostgreSQL 配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// ProviderConfig 语言模型 Provider 配置
// Name 选择 adapter（gemini / openai / ollama），其余字段按所选 provider 生效
type ProviderConfig struct {
	Name          string
	Timeout       time.Duration
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIBaseURL string // 兼容 OpenAI 协议的服务（OpenAI / Groq 等）
	OpenAIModel   string
	OllamaHost    string
	OllamaModel   string
}

// MQTTConfig 边缘设备 MQTT 上报配置（默认禁用）
type MQTTConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// Config wildtrack-api 服务配置
type Config struct {
	HTTP struct {
		Addr string
	}
	Database DatabaseConfig
	Redis    struct {
		Enabled  bool
		Addr     string
		Password string
		DB       int
		Stream   string // 告警事件流名称
	}
	Provider ProviderConfig
	MQTT     MQTTConfig
	Chat     struct {
		DigestCacheTTL time.Duration
		Fallback       string
	}
	Service struct {
		Timezone    string // "today" 窗口边界使用的 IANA 时区，启动时决定一次
		RecentLimit int    // GET /alerts 默认条数
	}
	Log struct {
		Level  string
		Format string
	}
}

// Load 从环境变量加载配置
func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "wildtrack")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Enabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)
	cfg.Redis.Stream = getEnv("ALERT_STREAM", "wildtrack:alerts")

	cfg.Provider.Name = getEnv("PROVIDER", "gemini")
	cfg.Provider.Timeout = parseDuration(getEnv("PROVIDER_TIMEOUT", "20s"), 20*time.Second)
	cfg.Provider.GeminiAPIKey = getEnv("GEMINI_API_KEY", "")
	cfg.Provider.GeminiModel = getEnv("GEMINI_MODEL", "gemini-1.5-flash")
	cfg.Provider.OpenAIAPIKey = getEnv("OPENAI_API_KEY", "")
	cfg.Provider.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", "https://api.openai.com")
	cfg.Provider.OpenAIModel = getEnv("OPENAI_MODEL", "gpt-4o-mini")
	cfg.Provider.OllamaHost = getEnv("OLLAMA_HOST", "http://localhost:11434")
	cfg.Provider.OllamaModel = getEnv("OLLAMA_MODEL", "gemma3:1b")

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "wildtrack-api")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "wildtrack/alerts")
	cfg.MQTT.QoS = byte(parseInt(getEnv("MQTT_QOS", "1"), 1))

	cfg.Chat.DigestCacheTTL = parseDuration(getEnv("CHAT_DIGEST_CACHE_TTL", "30s"), 30*time.Second)
	cfg.Chat.Fallback = getEnv("CHAT_FALLBACK_REPLY",
		"Sorry, I could not answer that right now. Please try again later.")

	cfg.Service.Timezone = getEnv("SERVICE_TIMEZONE", "UTC")
	cfg.Service.RecentLimit = parseInt(getEnv("RECENT_LIMIT", "20"), 20)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

// Validate 启动前校验：store 连接参数和所选 provider 的凭证缺失时直接拒绝启动，
// 不允许降级提供服务
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.Database == "" {
		return fmt.Errorf("database connection is not configured (DB_HOST / DB_NAME)")
	}
	if _, err := time.LoadLocation(c.Service.Timezone); err != nil {
		return fmt.Errorf("invalid SERVICE_TIMEZONE %q: %w", c.Service.Timezone, err)
	}
	switch c.Provider.Name {
	case "gemini":
		if c.Provider.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when PROVIDER=gemini")
		}
	case "openai":
		if c.Provider.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when PROVIDER=openai")
		}
	case "ollama":
		if c.Provider.OllamaHost == "" {
			return fmt.Errorf("OLLAMA_HOST is required when PROVIDER=ollama")
		}
	default:
		return fmt.Errorf("unknown provider: %s", c.Provider.Name)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
