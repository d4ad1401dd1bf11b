package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	configPathEnv       = "TRENDPRESS_CONFIG"
	databaseDriverEnv   = "DATABASE_DRIVER"
	databaseDSNEnv      = "DATABASE_DSN"
	redisAddrEnv        = "REDIS_ADDR"
	autoGenerationEnv   = "ENABLE_AUTO_GENERATION"
	openAIAPIKeyEnv     = "OPENAI_API_KEY"
	chatGPTAPIKeyEnv    = "CHATGPT_API_KEY"
	kimiAPIKeyEnv       = "KIMI_API_KEY"
	anthropicAPIKeyEnv  = "ANTHROPIC_API_KEY"
	backendModelEnv     = "BACKEND_MODEL"
	siteURLEnv          = "SITE_URL"
	siteNameEnv         = "SITE_NAME"
	portEnv             = "PORT"
	googleSubmitURLEnv  = "GOOGLE_SEARCH_CONSOLE_URL"
	baiduSubmitURLEnv   = "BAIDU_SEARCH_SUBMIT_URL"
	baiduTokenEnv       = "BAIDU_TOKEN"
	telegramTokenEnv    = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv   = "TELEGRAM_CHAT_ID"
	logLevelEnv         = "LOG_LEVEL"
	moonshotEndpoint    = "https://api.moonshot.cn/v1/chat/completions"
	moonshotModel       = "moonshot-v1-8k"
	openAIEndpoint      = "https://api.openai.com/v1/chat/completions"
	defaultClaudeModel  = "claude-sonnet-4-5"
	defaultOpenAIModel  = "gpt-4"
	defaultSitemapPath  = "public/sitemap.xml"
	defaultSiteURL      = "http://localhost:3000"
	defaultServerAddr   = ":3000"
	defaultDatabaseDSN  = "postgres://localhost:5432/trendpress?sslmode=disable"
	defaultSystemPrompt = "You are a professional content writer producing high quality SEO articles."
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Generation backend providers.
const (
	ProviderChatGPT = "chatgpt"
	ProviderClaude  = "claude"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Redis         RedisConfig        `yaml:"redis"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Backend       BackendConfig      `yaml:"backend"`
	Sources       []SourceConfig     `yaml:"sources"`
	SEO           SEOConfig          `yaml:"seo"`
	Server        ServerConfig       `yaml:"server"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// DatabaseConfig describes the topic/article store.
type DatabaseConfig struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

// RedisConfig enables distributed stage leases when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SchedulerConfig holds the four stage cadences and the global enable flag.
type SchedulerConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Timezone string         `yaml:"timezone"`
	Crawl    string         `yaml:"crawl"`
	Write    string         `yaml:"write"`
	Publish  string         `yaml:"publish"`
	SEO      string         `yaml:"seo"`
	LeaseTTL time.Duration  `yaml:"leaseTTL"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// PipelineConfig bounds batches and paces external calls.
type PipelineConfig struct {
	WriteBatch      int           `yaml:"writeBatch"`
	PublishBatch    int           `yaml:"publishBatch"`
	WriteInterval   time.Duration `yaml:"writeInterval"`
	PublishInterval time.Duration `yaml:"publishInterval"`
	FetchInterval   time.Duration `yaml:"fetchInterval"`
	FetchTimeout    time.Duration `yaml:"fetchTimeout"`
	RelatedLimit    int           `yaml:"relatedLimit"`
	SitemapLimit    int           `yaml:"sitemapLimit"`
	MinWords        int           `yaml:"minWords"`
	MaxWords        int           `yaml:"maxWords"`
}

// BackendConfig defines how to contact the generation backend.
type BackendConfig struct {
	Provider          string        `yaml:"provider"`
	Endpoint          string        `yaml:"endpoint"`
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"apiKey"`
	SystemPrompt      string        `yaml:"systemPrompt"`
	Temperature       float64       `yaml:"temperature"`
	MaxTokens         int           `yaml:"maxTokens"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
}

// SourceConfig describes a single trending source with its scanner strategy.
type SourceConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	URL     string            `yaml:"url"`
	Limit   int               `yaml:"limit"`
	Options map[string]string `yaml:"options"`
}

// SEOConfig covers the sitemap artifact and indexer endpoints.
type SEOConfig struct {
	SiteURL         string        `yaml:"siteUrl"`
	SitemapPath     string        `yaml:"sitemapPath"`
	GoogleSubmitURL string        `yaml:"googleSubmitUrl"`
	BaiduSubmitURL  string        `yaml:"baiduSubmitUrl"`
	BaiduToken      string        `yaml:"baiduToken"`
	PingURLs        []string      `yaml:"pingUrls"`
	Timeout         time.Duration `yaml:"timeout"`
}

// ServerConfig configures the read-only HTTP layer.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	SiteName        string `yaml:"siteName"`
	SiteDescription string `yaml:"siteDescription"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	// APIURL overrides the Bot API base, mostly for tests.
	APIURL string `yaml:"apiUrl"`
}

// Enabled reports whether both the token and the chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// LoggingConfig selects the slog level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv(autoGenerationEnv); v != "" {
		c.Scheduler.Enabled, _ = strconv.ParseBool(v)
	}

	if v := os.Getenv(anthropicAPIKeyEnv); v != "" {
		c.Backend.Provider = ProviderClaude
		c.Backend.APIKey = v
		c.Backend.Endpoint = ""
		c.Backend.Model = defaultClaudeModel
	}
	for _, env := range []string{chatGPTAPIKeyEnv, openAIAPIKeyEnv} {
		if v := os.Getenv(env); v != "" {
			c.Backend.Provider = ProviderChatGPT
			c.Backend.APIKey = v
			c.Backend.Endpoint = openAIEndpoint
			c.Backend.Model = defaultOpenAIModel
		}
	}
	// Kimi wins over OpenAI when both keys are present.
	if v := os.Getenv(kimiAPIKeyEnv); v != "" {
		c.Backend.Provider = ProviderChatGPT
		c.Backend.APIKey = v
		c.Backend.Endpoint = moonshotEndpoint
		c.Backend.Model = moonshotModel
	}
	if v := os.Getenv(backendModelEnv); v != "" {
		c.Backend.Model = v
	}

	if v := os.Getenv(siteURLEnv); v != "" {
		c.SEO.SiteURL = strings.TrimSuffix(v, "/")
	}
	if v := os.Getenv(siteNameEnv); v != "" {
		c.Server.SiteName = v
	}
	if v := os.Getenv(portEnv); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv(googleSubmitURLEnv); v != "" {
		c.SEO.GoogleSubmitURL = v
	}
	if v := os.Getenv(baiduSubmitURLEnv); v != "" {
		c.SEO.BaiduSubmitURL = v
	}
	if v := os.Getenv(baiduTokenEnv); v != "" {
		c.SEO.BaiduToken = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database: DatabaseConfig{Driver: DriverPostgres, DSN: defaultDatabaseDSN, Migrate: true},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Timezone: defaultTimezone,
			Crawl:    "0 */4 * * *",
			Write:    "0 */6 * * *",
			Publish:  "0 * * * *",
			SEO:      "0 2 * * *",
			LeaseTTL: 2 * time.Hour,
			location: tz,
		},
		Pipeline: PipelineConfig{
			WriteBatch:      10,
			PublishBatch:    5,
			WriteInterval:   2 * time.Second,
			PublishInterval: time.Second,
			FetchTimeout:    10 * time.Second,
			RelatedLimit:    3,
			SitemapLimit:    1000,
			MinWords:        1500,
			MaxWords:        3000,
		},
		Backend: BackendConfig{
			Provider:          ProviderChatGPT,
			Endpoint:          openAIEndpoint,
			Model:             defaultOpenAIModel,
			SystemPrompt:      defaultSystemPrompt,
			Temperature:       0.7,
			MaxTokens:         2000,
			Timeout:           60 * time.Second,
			RequestsPerSecond: 1,
		},
		Sources: []SourceConfig{
			{Name: "baidu", Scanner: "baidu", URL: "https://top.baidu.com/board", Limit: 20},
			{Name: "weibo", Scanner: "fixture"},
			{Name: "zhihu", Scanner: "zhihu", URL: "https://www.zhihu.com/hot", Limit: 20},
			{Name: "toutiao", Scanner: "fixture"},
		},
		SEO: SEOConfig{
			SiteURL:     defaultSiteURL,
			SitemapPath: defaultSitemapPath,
			PingURLs: []string{
				"http://www.google.com/webmasters/sitemaps/ping?sitemap=%s",
				"http://www.bing.com/webmaster/ping.aspx?siteMap=%s",
			},
			Timeout: 10 * time.Second,
		},
		Server:  ServerConfig{Addr: defaultServerAddr, SiteName: "TrendPress"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
