package config

// Config is the full service configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Retriever RetrieverConfig `mapstructure:"retriever"`
	Reasoner  ReasonerConfig  `mapstructure:"reasoner"`
	Policy    PolicyConfig    `mapstructure:"policy"`
	Store     StoreConfig     `mapstructure:"store"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	HTTPAddr string `mapstructure:"http_addr"`
	LogPath  string `mapstructure:"log_path"`
	LLMLog   string `mapstructure:"llm_log_path"`
	LLMDump  bool   `mapstructure:"llm_dump_payload"`
}

// RetrieverConfig points at the external semantic index. An empty base URL
// disables retrieval; decisions then run without policy context.
type RetrieverConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	TopK           int    `mapstructure:"top_k"`
}

// ReasonerConfig points at the OpenAI-compatible inference endpoint. An
// empty model disables assisted mode; scoring stays deterministic.
type ReasonerConfig struct {
	BaseURL                string  `mapstructure:"base_url"`
	APIKey                 string  `mapstructure:"api_key"`
	Model                  string  `mapstructure:"model"`
	TimeoutSeconds         int     `mapstructure:"timeout_seconds"`
	Temperature            float64 `mapstructure:"temperature"`
	MaxRetries             int     `mapstructure:"max_retries"`
	BreakerThreshold       int     `mapstructure:"breaker_threshold"`
	BreakerCooldownSeconds int     `mapstructure:"breaker_cooldown_seconds"`
}

type PolicyConfig struct {
	// TemplatesPath is a YAML rulebook; empty means compiled-in defaults.
	TemplatesPath string `mapstructure:"templates_path"`
}

type StoreConfig struct {
	// Path of the sqlite decision log; empty disables persistence.
	Path string `mapstructure:"path"`
	// AuditPath of the raw reasoner exchange log; empty disables it.
	AuditPath string `mapstructure:"audit_path"`
}

type NotifyConfig struct {
	Telegram          TelegramConfig `mapstructure:"telegram"`
	HighRiskThreshold int            `mapstructure:"high_risk_threshold"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}
