package config

const (
	defaultEnv              = "dev"
	defaultLogLevel         = "info"
	defaultHTTPAddr         = ":8091"
	defaultRetrieverTimeout = 10
	defaultTopK             = 5
	defaultReasonerTimeout  = 30
	defaultTemperature      = 0.2
	defaultBreakerThreshold = 3
	defaultBreakerCooldown  = 30
	defaultHighRisk         = 70
)

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = defaultEnv
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultLogLevel
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = defaultHTTPAddr
	}
	if c.Retriever.TimeoutSeconds <= 0 {
		c.Retriever.TimeoutSeconds = defaultRetrieverTimeout
	}
	if c.Retriever.TopK <= 0 {
		c.Retriever.TopK = defaultTopK
	}
	if c.Reasoner.TimeoutSeconds <= 0 {
		c.Reasoner.TimeoutSeconds = defaultReasonerTimeout
	}
	if c.Reasoner.Temperature <= 0 {
		c.Reasoner.Temperature = defaultTemperature
	}
	if c.Reasoner.BreakerThreshold <= 0 {
		c.Reasoner.BreakerThreshold = defaultBreakerThreshold
	}
	if c.Reasoner.BreakerCooldownSeconds <= 0 {
		c.Reasoner.BreakerCooldownSeconds = defaultBreakerCooldown
	}
	if c.Notify.HighRiskThreshold <= 0 {
		c.Notify.HighRiskThreshold = defaultHighRisk
	}
}
