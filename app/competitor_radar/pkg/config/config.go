package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Search      SearchConfig      `yaml:"search" json:"search"`
	Fetch       FetchConfig       `yaml:"fetch" json:"fetch"`
	Categories  []string          `yaml:"categories" json:"categories"`
	Log         LogConfig         `yaml:"log" json:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Delivery    DeliveryConfig    `yaml:"delivery" json:"delivery"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	Provider string `yaml:"provider" json:"provider"` // openai or gemini
	BaseURL  string `yaml:"base_url" json:"base_url"`
	APIKey   string `yaml:"api_key" json:"api_key"`
	Model    string `yaml:"model" json:"model"`
	Timeout  int    `yaml:"timeout" json:"timeout"` // 秒
	Fast     Tier   `yaml:"fast" json:"fast"`
	Smart    Tier   `yaml:"smart" json:"smart"`
}

// Tier 模型档位。Model 为空时沿用 LLMConfig.Model
type Tier struct {
	Model       string  `yaml:"model" json:"model"`
	Temperature float32 `yaml:"temperature" json:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
}

// SearchConfig 搜索相关配置
type SearchConfig struct {
	Provider   string        `yaml:"provider" json:"provider"`
	MaxResults int           `yaml:"max_results" json:"max_results"`
	Timeout    int           `yaml:"timeout" json:"timeout"` // 秒
	Tavily     TavilyConfig  `yaml:"tavily" json:"tavily"`
	SearXNG    SearXNGConfig `yaml:"searxng" json:"searxng"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key" json:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	Timeout int    `yaml:"timeout" json:"timeout"`
}

// FetchConfig 正文抓取配置
type FetchConfig struct {
	Provider  string          `yaml:"provider" json:"provider"` // readability, firecrawl or browser
	MaxChars  int             `yaml:"max_chars" json:"max_chars"`
	Timeout   int             `yaml:"timeout" json:"timeout"` // 秒
	UserAgent string          `yaml:"user_agent" json:"user_agent"`
	Firecrawl FirecrawlConfig `yaml:"firecrawl" json:"firecrawl"`
	Browser   BrowserConfig   `yaml:"browser" json:"browser"`
}

// FirecrawlConfig Firecrawl 配置
type FirecrawlConfig struct {
	APIKey  string `yaml:"api_key" json:"api_key"`
	BaseURL string `yaml:"base_url" json:"base_url"`
}

// BrowserConfig 无头浏览器配置
type BrowserConfig struct {
	ChromeBin string `yaml:"chrome_bin" json:"chrome_bin"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// ConcurrencyConfig 外部调用限流配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps" json:"qps"`
	RPM int `yaml:"rpm" json:"rpm"`
}

// DeliveryConfig 报告投递配置
type DeliveryConfig struct {
	SMTP SMTPConfig `yaml:"smtp" json:"smtp"`
	S3   S3Config   `yaml:"s3" json:"s3"`
}

// SMTPConfig 邮件投递配置
type SMTPConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	From     string `yaml:"from" json:"from"`
}

// S3Config 对象存储投递配置
type S3Config struct {
	Region       string `yaml:"region" json:"region"`
	Endpoint     string `yaml:"endpoint" json:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style" json:"use_path_style"`
}

// Default 返回带默认值的配置
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// LoadConfig 从指定路径加载配置，文件中的 ${VAR} 会从环境变量展开
func LoadConfig(path string) (*Config, error) {
	loadDotEnv()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	return &cfg, nil
}

// LoadOrDefault 配置文件不存在时回退到默认配置 + 环境变量
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
	}
	loadDotEnv()
	cfg := &Config{}
	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	return cfg, nil
}

func loadDotEnv() {
	// .env 不存在时直接使用进程环境变量
	_ = godotenv.Load()
}

// ApplyEnv 用环境变量补齐未配置的凭据
func (c *Config) ApplyEnv() {
	setFromEnv(&c.Search.Tavily.APIKey, "TAVILY_API_KEY")
	setFromEnv(&c.Search.SearXNG.BaseURL, "SEARXNG_BASE_URL")
	setFromEnv(&c.Fetch.Firecrawl.APIKey, "FIRECRAWL_API_KEY")
	setFromEnv(&c.Fetch.Browser.ChromeBin, "CHROME_BIN")
	setFromEnv(&c.LLM.BaseURL, "LLM_BASE_URL")
	setFromEnv(&c.Delivery.SMTP.Password, "SMTP_PASSWORD")
	setFromEnv(&c.Delivery.S3.Region, "AWS_REGION")

	switch c.LLM.Provider {
	case "gemini":
		setFromEnv(&c.LLM.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	default:
		setFromEnv(&c.LLM.APIKey, "LLM_API_KEY", "OPENAI_API_KEY")
	}
}

// ApplyDefaults 填充默认值
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 120
	}
	if c.LLM.Fast.Temperature == 0 {
		c.LLM.Fast.Temperature = 0.2
	}
	if c.LLM.Fast.MaxTokens <= 0 {
		c.LLM.Fast.MaxTokens = 2048
	}
	if c.LLM.Smart.Temperature == 0 {
		c.LLM.Smart.Temperature = 0.2
	}
	if c.LLM.Smart.MaxTokens <= 0 {
		c.LLM.Smart.MaxTokens = 4096
	}

	if c.Search.Provider == "" {
		c.Search.Provider = "tavily"
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 3
	}
	if c.Search.Timeout <= 0 {
		c.Search.Timeout = 30
	}

	if c.Fetch.Provider == "" {
		c.Fetch.Provider = "readability"
	}
	if c.Fetch.MaxChars <= 0 {
		c.Fetch.MaxChars = 1000
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 30
	}

	if len(c.Categories) == 0 {
		c.Categories = append([]string(nil), model.DefaultCategories...)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 60
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Delivery.SMTP.Port == 0 {
		c.Delivery.SMTP.Port = 587
	}
}

// SearchTimeout 单次搜索调用超时
func (c *Config) SearchTimeout() time.Duration { return seconds(c.Search.Timeout) }

// FetchTimeout 单次抓取调用超时
func (c *Config) FetchTimeout() time.Duration { return seconds(c.Fetch.Timeout) }

// LLMTimeout 单次模型调用超时
func (c *Config) LLMTimeout() time.Duration { return seconds(c.LLM.Timeout) }

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func setFromEnv(dst *string, keys ...string) {
	if *dst != "" {
		return
	}
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			*dst = v
			return
		}
	}
}
