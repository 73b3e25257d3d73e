// Package config 提供配置加载和管理功能
package config

import (
	"time"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Database      DatabaseConfig      `yaml:"database" mapstructure:"database"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Storage       StorageConfig       `yaml:"storage" mapstructure:"storage"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Image         ImageConfig         `yaml:"image" mapstructure:"image"`
	Generation    GenerationConfig    `yaml:"generation" mapstructure:"generation"`
	Catalog       CatalogConfig       `yaml:"catalog" mapstructure:"catalog"`
	Tokens        TokensConfig        `yaml:"tokens" mapstructure:"tokens"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Postgres PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
}

// PostgresConfig PostgreSQL 配置
type PostgresConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	User            string        `yaml:"user" mapstructure:"user"`
	Password        string        `yaml:"password" mapstructure:"password"`
	Database        string        `yaml:"database" mapstructure:"database"`
	SSLMode         string        `yaml:"ssl_mode" mapstructure:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
	// MOTDTTL 公告缓存时长
	MOTDTTL time.Duration `yaml:"motd_ttl" mapstructure:"motd_ttl"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// 存储后端
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// StorageConfig 外部协作方的存储选择
// Documents: 公告与作品库；Tokens: 生成额度；Cache: 公告缓存与限流计数
type StorageConfig struct {
	Documents string `yaml:"documents" mapstructure:"documents"`
	Tokens    string `yaml:"tokens" mapstructure:"tokens"`
	Cache     string `yaml:"cache" mapstructure:"cache"`
}

// LLMConfig LLM 配置
type LLMConfig struct {
	DefaultProvider string                    `yaml:"default_provider" mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
}

// ProviderConfig LLM 提供商配置
type ProviderConfig struct {
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	TopP        float64       `yaml:"top_p" mapstructure:"top_p"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ImageConfig 图像模型配置
type ImageConfig struct {
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	Model       string        `yaml:"model" mapstructure:"model"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	TopP        float64       `yaml:"top_p" mapstructure:"top_p"`
	TopK        float64       `yaml:"top_k" mapstructure:"top_k"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// GenerationConfig 上游调用的重试与节流
type GenerationConfig struct {
	MaxAttempts       int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffUnit       time.Duration `yaml:"backoff_unit" mapstructure:"backoff_unit"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// CatalogConfig 静态目录配置，Dir 为空时使用内嵌数据
type CatalogConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// TokensConfig 生成额度配置
type TokensConfig struct {
	Initial  int    `yaml:"initial" mapstructure:"initial"`
	AutoCap  int    `yaml:"auto_cap" mapstructure:"auto_cap"`
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
	Enforce  bool   `yaml:"enforce" mapstructure:"enforce"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JWT       JWTConfig       `yaml:"jwt" mapstructure:"jwt"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors" mapstructure:"cors"`
	// DemoUser 未携带 Token 时使用的演示用户，为空则视为匿名
	DemoUser DemoUserConfig `yaml:"demo_user" mapstructure:"demo_user"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	Secret     string        `yaml:"secret" mapstructure:"secret"`
	Issuer     string        `yaml:"issuer" mapstructure:"issuer"`
	Expiration time.Duration `yaml:"expiration" mapstructure:"expiration"`
}

// RateLimitConfig 限流配置（作用于 /api/story/*）
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Limit   int           `yaml:"limit" mapstructure:"limit"`
	Window  time.Duration `yaml:"window" mapstructure:"window"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}

// DemoUserConfig 演示用户
type DemoUserConfig struct {
	UID         string `yaml:"uid" mapstructure:"uid"`
	DisplayName string `yaml:"display_name" mapstructure:"display_name"`
	Email       string `yaml:"email" mapstructure:"email"`
}

// TextProvider 返回默认文本模型提供商名称及配置
func (c *Config) TextProvider() (string, ProviderConfig) {
	name := c.LLM.DefaultProvider
	return name, c.LLM.Providers[name]
}
