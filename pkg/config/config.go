package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Corpus    CorpusConfig
	Retrieval RetrievalConfig
	Chat      ChatConfig
	RateLimit RateLimitConfig
	Captcha   CaptchaConfig
	LLM       LLMConfig
	Redis     RedisConfig
	SQLite    SQLiteConfig
	Subject   SubjectConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type CorpusConfig struct {
	// SourceDir holds the builder inputs (skills.json, projects.json,
	// resume.json, availability.json, principles.json).
	SourceDir string
	// ArtifactDir holds the builder outputs consumed by the runtime.
	ArtifactDir   string
	AnchorFile    string
	IndexFile     string
	DefaultLocale string
	Locales       []string
}

type RetrievalConfig struct {
	TopK            int
	ContextSnippet  int
	ContextMaxChars int
}

type ChatConfig struct {
	// MaxMessageChars is the sanitized length cap applied to the incoming
	// message and to each replayed history turn.
	MaxMessageChars int
}

type RateLimitConfig struct {
	MaxRequests int
	WindowSec   int
	// Backend is "memory" or "redis".
	Backend string
}

type CaptchaConfig struct {
	PromptThreshold int
	CodeLength      int
	ChallengeTTLSec int
	SolvedTTLSec    int
}

type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
	MaxHistory  int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type SQLiteConfig struct {
	Enabled bool
	Path    string
}

type SubjectConfig struct {
	Name string
	// NameAliases maps CJK phonetic spellings of the subject's name to the
	// canonical Latin token injected at tokenization time.
	NameAliases map[string]string
	ResumeHref  string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/profile-chat")

	viper.SetEnvPrefix("PROFILE_CHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSec) * time.Second
}

func (c CaptchaConfig) ChallengeTTL() time.Duration {
	return time.Duration(c.ChallengeTTLSec) * time.Second
}

func (c CaptchaConfig) SolvedTTL() time.Duration {
	return time.Duration(c.SolvedTTLSec) * time.Second
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("corpus.sourceDir", "./content")
	viper.SetDefault("corpus.artifactDir", "./data")
	viper.SetDefault("corpus.anchorFile", "anchors.json")
	viper.SetDefault("corpus.indexFile", "embedding-index.json")
	viper.SetDefault("corpus.defaultLocale", "en")
	viper.SetDefault("corpus.locales", []string{"en", "ja", "zh"})

	viper.SetDefault("retrieval.topK", 5)
	viper.SetDefault("retrieval.contextSnippet", 280)
	viper.SetDefault("retrieval.contextMaxChars", 2400)

	viper.SetDefault("chat.maxMessageChars", 2000)

	viper.SetDefault("ratelimit.maxRequests", 10)
	viper.SetDefault("ratelimit.windowSec", 3600)
	viper.SetDefault("ratelimit.backend", "memory")

	viper.SetDefault("captcha.promptThreshold", 2)
	viper.SetDefault("captcha.codeLength", 6)
	viper.SetDefault("captcha.challengeTTLSec", 300)
	viper.SetDefault("captcha.solvedTTLSec", 1800)

	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.maxTokens", 512)
	viper.SetDefault("llm.timeoutSec", 20)
	viper.SetDefault("llm.maxHistory", 6)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("sqlite.enabled", false)
	viper.SetDefault("sqlite.path", "./data/exchanges.db")

	viper.SetDefault("subject.name", "the candidate")
	viper.SetDefault("subject.resumeHref", "/resume")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
