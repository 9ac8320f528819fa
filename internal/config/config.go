package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the responder.
type Config struct {
	General   GeneralConfig     `yaml:"general" json:"general"`
	Gateway   GatewayConfig     `yaml:"gateway" json:"gateway"`
	Groups    []string          `yaml:"groups" json:"groups"`           // monitored group ids
	Expiry    map[string]string `yaml:"groupExpiry" json:"groupExpiry"` // group id -> YYYYMMDD
	Providers ProvidersConfig   `yaml:"providers" json:"providers"`
	OCR       OCRConfig         `yaml:"ocr" json:"ocr"`
	Chitchat  ChitchatConfig    `yaml:"chitchat" json:"chitchat"`
	News      NewsConfig        `yaml:"news" json:"news"`
	Notify    NotifyConfig      `yaml:"notify" json:"notify"`
	Contacts  ContactsConfig    `yaml:"contacts" json:"contacts"`
	Metrics   MetricsConfig     `yaml:"metrics" json:"metrics"`
}

type GeneralConfig struct {
	LogLevel string `yaml:"logLevel" json:"logLevel"`
	DataDir  string `yaml:"dataDir" json:"dataDir"`
}

type GatewayConfig struct {
	Addr        string `yaml:"addr" json:"addr"` // ws:// endpoint of the messaging bridge
	DownloadDir string `yaml:"downloadDir" json:"downloadDir"`
	PullTimeout int    `yaml:"pullTimeoutSeconds" json:"pullTimeoutSeconds"`
}

// ProvidersConfig holds every conversational backend candidate. Active names
// an explicit override; when empty the selector scans in declared priority
// order (tigerbot, chatgpt, xinghuo, chatglm, bard, zhipu).
type ProvidersConfig struct {
	Active   string         `yaml:"active" json:"active"`
	TigerBot TigerBotConfig `yaml:"tigerbot" json:"tigerbot"`
	ChatGPT  ChatGPTConfig  `yaml:"chatgpt" json:"chatgpt"`
	Xinghuo  XinghuoConfig  `yaml:"xinghuo" json:"xinghuo"`
	ChatGLM  ChatGLMConfig  `yaml:"chatglm" json:"chatglm"`
	Bard     BardConfig     `yaml:"bard" json:"bard"`
	Zhipu    ZhipuConfig    `yaml:"zhipu" json:"zhipu"`
}

type TigerBotConfig struct {
	APIKey string `yaml:"apiKey" json:"apiKey"`
	Model  string `yaml:"model" json:"model"`
	Proxy  string `yaml:"proxy,omitempty" json:"proxy,omitempty"`
}

// Valid reports whether every required field is set. Proxy is optional.
func (c TigerBotConfig) Valid() bool {
	return c.APIKey != "" && c.Model != ""
}

type ChatGPTConfig struct {
	APIKey  string `yaml:"apiKey" json:"apiKey"`
	APIBase string `yaml:"apiBase" json:"apiBase"`
	Model   string `yaml:"model" json:"model"`
	Prompt  string `yaml:"prompt" json:"prompt"`
	Proxy   string `yaml:"proxy,omitempty" json:"proxy,omitempty"`
}

func (c ChatGPTConfig) Valid() bool {
	return c.APIKey != "" && c.APIBase != "" && c.Model != "" && c.Prompt != ""
}

type XinghuoConfig struct {
	AppID     string `yaml:"appId" json:"appId"`
	APIKey    string `yaml:"apiKey" json:"apiKey"`
	APISecret string `yaml:"apiSecret" json:"apiSecret"`
	APIURL    string `yaml:"apiUrl" json:"apiUrl"`
	Domain    string `yaml:"domain" json:"domain"`
	Proxy     string `yaml:"proxy,omitempty" json:"proxy,omitempty"`
}

func (c XinghuoConfig) Valid() bool {
	return c.AppID != "" && c.APIKey != "" && c.APISecret != "" && c.APIURL != "" && c.Domain != ""
}

type ChatGLMConfig struct {
	APIKey  string `yaml:"apiKey" json:"apiKey"`
	APIBase string `yaml:"apiBase" json:"apiBase"`
	Model   string `yaml:"model" json:"model"`
	Proxy   string `yaml:"proxy,omitempty" json:"proxy,omitempty"`
}

func (c ChatGLMConfig) Valid() bool {
	return c.APIKey != "" && c.APIBase != "" && c.Model != ""
}

type BardConfig struct {
	ProfileDir string `yaml:"profileDir" json:"profileDir"`
	ChatURL    string `yaml:"chatUrl" json:"chatUrl"`
	Proxy      string `yaml:"proxy,omitempty" json:"proxy,omitempty"`
}

func (c BardConfig) Valid() bool {
	return c.ProfileDir != "" && c.ChatURL != ""
}

type ZhipuConfig struct {
	APIKey string `yaml:"apiKey" json:"apiKey"`
	Model  string `yaml:"model" json:"model"`
	Proxy  string `yaml:"proxy,omitempty" json:"proxy,omitempty"`
}

func (c ZhipuConfig) Valid() bool {
	return c.APIKey != "" && c.Model != ""
}

type OCRConfig struct {
	SecretID  string `yaml:"secretId" json:"secretId"`
	SecretKey string `yaml:"secretKey" json:"secretKey"`
	Region    string `yaml:"region" json:"region"`
}

type ChitchatConfig struct {
	// EnableBackend switches the fallback path from the canned deterrent
	// reply to a real provider query.
	EnableBackend bool `yaml:"enableBackend" json:"enableBackend"`
}

type NewsConfig struct {
	Receivers []string `yaml:"receivers" json:"receivers"` // group or user ids
	Cron      string   `yaml:"cron" json:"cron"`
	APIBase   string   `yaml:"apiBase" json:"apiBase"`
}

type NotifyConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Token   string `yaml:"token" json:"token"`
	ChatID  int64  `yaml:"chatId" json:"chatId"`
}

type ContactsConfig struct {
	DBPath string `yaml:"dbPath" json:"dbPath"`
}

type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	Port     int    `yaml:"port" json:"port"`
}

// DefaultConfigDir returns the default config directory (~/.wxbot).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wxbot"
	}
	return filepath.Join(home, ".wxbot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.General.DataDir = ExpandPath(cfg.General.DataDir)
	cfg.Gateway.DownloadDir = ExpandPath(cfg.Gateway.DownloadDir)
	cfg.Contacts.DBPath = ExpandPath(cfg.Contacts.DBPath)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Gateway.Addr == "" {
		errs = append(errs, "gateway.addr is required")
	}
	if cfg.Gateway.PullTimeout < 1 {
		errs = append(errs, "gateway.pullTimeoutSeconds must be >= 1")
	}

	for group, date := range cfg.Expiry {
		if _, err := time.ParseInLocation("20060102", date, time.Local); err != nil {
			errs = append(errs, fmt.Sprintf("groupExpiry.%s: %q is not a YYYYMMDD date", group, date))
		}
	}

	if cfg.Metrics.Enabled && (cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535) {
		errs = append(errs, "metrics.port must be between 1 and 65535")
	}

	if cfg.Notify.Enabled && cfg.Notify.Token == "" {
		errs = append(errs, "notify.token is required when notify is enabled")
	}

	if len(cfg.News.Receivers) > 0 && cfg.News.Cron == "" {
		errs = append(errs, "news.cron is required when news receivers are set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
