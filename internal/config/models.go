package config

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider       string
	MaxSnippetSize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// FeedbackConfig represents the configuration for the feedback store
type FeedbackConfig struct {
	MaxEntries     int
	RetrievalLimit int
}

// StoreConfig represents the configuration for the persistence backend
type StoreConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// SMTPConfig represents the configuration for the SMTP reply transport
type SMTPConfig struct {
	Enabled  bool
	Address  string
	Username string
	Password string
	From     string
}

// MailConfig represents the configuration for the mail provider
type MailConfig struct {
	Provider    string
	AccessToken string
	FetchLimit  int64
	SMTP        SMTPConfig
}

// ServerConfig represents the configuration for the HTTP API server
type ServerConfig struct {
	ListenAddress string
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:       c.GetString("llm.provider"),
		MaxSnippetSize: c.GetInt("llm.max_snippet_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetFeedback returns the feedback store configuration
func (c *Config) GetFeedback() FeedbackConfig {
	return FeedbackConfig{
		MaxEntries:     c.GetInt("feedback.max_entries"),
		RetrievalLimit: c.GetInt("feedback.retrieval_limit"),
	}
}

// GetStore returns the persistence backend configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:       c.GetString("store.type"),
		SQLitePath: c.GetString("store.sqlite_path"),
		MySQLDSN:   c.GetString("store.mysql_dsn"),
	}
}

// GetMail returns the mail provider configuration
func (c *Config) GetMail() MailConfig {
	return MailConfig{
		Provider:    c.GetString("mail.provider"),
		AccessToken: c.GetString("mail.access_token"),
		FetchLimit:  c.GetInt64("mail.fetch_limit"),
		SMTP: SMTPConfig{
			Enabled:  c.GetBool("mail.smtp.enabled"),
			Address:  c.GetString("mail.smtp.address"),
			Username: c.GetString("mail.smtp.username"),
			Password: c.GetString("mail.smtp.password"),
			From:     c.GetString("mail.smtp.from"),
		},
	}
}

// GetServer returns the HTTP API server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
	}
}
