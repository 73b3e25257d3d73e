// Package config 提供配置加载功能
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Load 从 configs 目录加载配置
func Load() (*Config, error) {
	return LoadFrom("configs")
}

// LoadFrom 加载指定目录下的配置文件
// 按优先级加载：默认配置 -> 环境配置 -> 环境变量
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 加载默认配置
	if err := loadConfigFile(v, filepath.Join(dir, "config.yaml"), false); err != nil {
		return nil, err
	}

	// 2. 加载环境特定配置
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	envFile := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
	if err := loadConfigFile(v, envFile, true); err != nil {
		return nil, err
	}

	// 3. 绑定环境变量 (直接覆盖)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 设置默认值 (兜底)
	setDefaults(v)

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验存储后端等枚举项
func (c *Config) Validate() error {
	for field, backend := range map[string]string{
		"storage.documents": c.Storage.Documents,
		"storage.tokens":    c.Storage.Tokens,
	} {
		switch backend {
		case BackendMemory, BackendRedis, BackendPostgres:
		default:
			return fmt.Errorf("invalid %s: %q", field, backend)
		}
	}
	switch c.Storage.Cache {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("invalid storage.cache: %q", c.Storage.Cache)
	}
	if c.Storage.Documents == BackendRedis {
		return fmt.Errorf("storage.documents does not support %q", BackendRedis)
	}
	return nil
}

// loadConfigFile 读取文件，执行环境变量替换，并加载到 viper
func loadConfigFile(v *viper.Viper, path string, optional bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// 执行环境变量替换
	expanded := expandEnv(string(content))

	// 加载到 viper
	reader := strings.NewReader(expanded)
	if v.ConfigFileUsed() == "" {
		if err := v.ReadConfig(reader); err != nil {
			return fmt.Errorf("failed to read processed config %s: %w", path, err)
		}
		// 手动标记已加载文件，防止后续 ReadInConfig 报错
		v.SetConfigFile(path)
	} else {
		if err := v.MergeConfig(reader); err != nil {
			return fmt.Errorf("failed to merge processed config %s: %w", path, err)
		}
	}

	return nil
}

// placeholderRe 匹配 ${VAR} 或 ${VAR:default}
// g1: 变量名, g2: 默认值部分（含冒号）, g3: 默认值内容
var placeholderRe = regexp.MustCompile(`\${(\w+)(:([^}]*))?}`)

// expandEnv 替换字符串中的 ${VAR:default} 占位符
func expandEnv(s string) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		submatch := placeholderRe.FindStringSubmatch(match)
		key := submatch[1]
		hasDefault := submatch[2] != ""
		defVal := submatch[3]

		val, ok := os.LookupEnv(key)
		if ok {
			return val
		}
		if hasDefault {
			return defVal
		}
		return match // 未定义且无默认值时保留原样
	})
}

// MustLoad 加载配置，失败时 panic
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	// 应用默认值
	v.SetDefault("app.name", "fairybook-api")
	v.SetDefault("app.version", "v0.0.0")
	v.SetDefault("app.env", "development")

	// HTTP 服务器默认值
	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", "30s")
	v.SetDefault("server.http.write_timeout", "180s")
	v.SetDefault("server.http.idle_timeout", "120s")

	// 数据库默认值
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.database", "fairybook")
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 20)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", "30m")
	v.SetDefault("database.postgres.conn_max_idle_time", "5m")

	// Redis 默认值
	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.pool_size", 20)
	v.SetDefault("cache.redis.min_idle_conns", 2)
	v.SetDefault("cache.redis.dial_timeout", "5s")
	v.SetDefault("cache.redis.read_timeout", "3s")
	v.SetDefault("cache.redis.write_timeout", "3s")
	v.SetDefault("cache.motd_ttl", "60s")

	// 存储默认值：全部使用内存种子数据
	v.SetDefault("storage.documents", BackendMemory)
	v.SetDefault("storage.tokens", BackendMemory)
	v.SetDefault("storage.cache", BackendMemory)

	// 文本模型默认值：Gemini 的 OpenAI 兼容端点
	v.SetDefault("llm.default_provider", "gemini")
	v.SetDefault("llm.providers.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("llm.providers.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.providers.gemini.max_tokens", 2048)
	v.SetDefault("llm.providers.gemini.temperature", 0.7)
	v.SetDefault("llm.providers.gemini.top_p", 0.95)
	v.SetDefault("llm.providers.gemini.timeout", "120s")

	// 图像模型默认值
	v.SetDefault("image.model", "gemini-2.5-flash-image")
	v.SetDefault("image.temperature", 0.7)
	v.SetDefault("image.top_p", 0.95)
	v.SetDefault("image.top_k", 32)
	v.SetDefault("image.max_tokens", 2048)
	v.SetDefault("image.timeout", "120s")

	// 重试与节流默认值
	v.SetDefault("generation.max_attempts", 3)
	v.SetDefault("generation.backoff_unit", "250ms")
	v.SetDefault("generation.requests_per_second", 2.0)
	v.SetDefault("generation.burst", 4)

	// 生成额度默认值
	v.SetDefault("tokens.initial", 7)
	v.SetDefault("tokens.auto_cap", 10)
	v.SetDefault("tokens.timezone", "Asia/Seoul")
	v.SetDefault("tokens.enforce", false)

	// 可观测性默认值
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")
	v.SetDefault("observability.tracing.sample_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")

	// 安全默认值
	v.SetDefault("security.jwt.issuer", "fairybook")
	v.SetDefault("security.jwt.expiration", "24h")
	v.SetDefault("security.rate_limit.enabled", false)
	v.SetDefault("security.rate_limit.limit", 30)
	v.SetDefault("security.rate_limit.window", "1m")
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.demo_user.uid", "sample-user")
	v.SetDefault("security.demo_user.display_name", "Sample User")
}
