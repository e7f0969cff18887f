package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/factory"
	"github.com/mikey/inbox-triage/internal/feedback"
	"github.com/mikey/inbox-triage/internal/logging"
	"github.com/mikey/inbox-triage/internal/utils"
	"go.uber.org/zap"
)

var (
	// LLM provider flags
	provider    = flag.String("provider", "openai", "LLM provider (openai, gemini, bedrock)")
	maxTokens   = flag.Int("max-tokens", 1000, "Maximum tokens for LLM response")
	temperature = flag.Float64("temperature", 0.1, "Temperature for LLM generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for LLM generation")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4o-mini", "OpenAI model name")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Feedback store flags
	storeType  = flag.String("store", "sqlite", "Feedback store backend (memory, sqlite, mysql)")
	sqlitePath = flag.String("sqlite-path", defaultSQLitePath(), "Path to the SQLite feedback database")
	userID     = flag.String("user", "default", "User identifier scoping the feedback log")

	// Actions
	correct     = flag.String("correct", "", "Record a correction (Personal or NotPersonal) instead of trusting the model")
	showHistory = flag.Bool("history", false, "Print the user's feedback log and exit")
	deleteEntry = flag.Int64("delete-feedback", 0, "Delete the feedback entry with this timestamp and exit")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "inbox_triage.db"
	}
	return home + "/.inbox-triage/feedback.db"
}

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	// Build the feedback store
	storeFactory := factory.NewStoreFactory(cfg, logger)
	kv, err := storeFactory.CreateKVStore()
	if err != nil {
		logger.Fatal("Failed to create feedback store", zap.Error(err))
	}
	repo := feedback.NewStore(kv, logger, cfg.GetFeedback().MaxEntries)

	ctx := context.Background()

	if *showHistory {
		printHistory(ctx, repo)
		return
	}

	if *deleteEntry != 0 {
		if err := repo.Delete(ctx, *deleteEntry, *userID); err != nil {
			logger.Fatal("Failed to delete feedback entry", zap.Error(err))
		}
		fmt.Printf("Deleted feedback entry %d (if it existed)\n", *deleteEntry)
		return
	}

	msg := readEmail(logger)

	if *correct != "" {
		category := core.Category(*correct)
		if !category.IsValid() {
			logger.Fatal("Correction must be Personal or NotPersonal", zap.String("got", *correct))
		}
		entry, err := repo.Save(ctx, msg, category, *userID)
		if err != nil {
			logger.Fatal("Failed to record correction", zap.Error(err))
		}
		fmt.Printf("Recorded correction: %s -> %s (ts=%d)\n", msg.Sender, category, entry.Timestamp)
		return
	}

	// Build the LLM client and classification engine
	llmFactory := factory.NewLLMFactory(cfg, logger)
	llmClient, err := llmFactory.CreateLLMClient()
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	engine := core.NewEngine(
		llmClient,
		repo,
		logger,
		utils.NewTextProcessor(logger),
		cfg.GetFeedback().RetrievalLimit,
		cfg.GetLLM().MaxSnippetSize,
	)

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", msg.Sender)
	fmt.Printf("Subject: %s\n", msg.Subject)
	fmt.Printf("Snippet length: %d bytes\n", len(msg.Snippet))
	fmt.Printf("\n")

	fmt.Printf("=== Classification ===\n")
	fmt.Printf("Provider: %s\n", cfg.GetString("llm.provider"))
	fmt.Printf("User: %s\n", *userID)

	startTime := time.Now()
	result := engine.Classify(ctx, msg, *userID)
	duration := time.Since(startTime)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Category: %s\n", result.Category)
	fmt.Printf("Reasoning: %s\n", result.Reasoning)
	if result.UsedContext != nil {
		fmt.Printf("Used context: %q -> %s (ts=%d)\n",
			result.UsedContext.Subject,
			result.UsedContext.UserClassification,
			result.UsedContext.Timestamp)
	}
	fmt.Printf("Processing time: %v\n", duration)

	// Close any resources that need closing
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
	if closer, ok := kv.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close store", zap.Error(err))
		}
	}
}

// readEmail parses an RFC 822 email from the input file or stdin
func readEmail(logger *zap.Logger) *core.Message {
	var emailReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	parsed, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	bodyBytes, err := io.ReadAll(parsed.Body)
	if err != nil {
		logger.Fatal("Failed to read email body", zap.Error(err))
	}
	body := strings.TrimSpace(string(bodyBytes))

	snippet := body
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}

	return &core.Message{
		MessageID: parsed.Header.Get("Message-ID"),
		Sender:    parsed.Header.Get("From"),
		Subject:   parsed.Header.Get("Subject"),
		Snippet:   snippet,
		Body:      body,
	}
}

func printHistory(ctx context.Context, repo *feedback.Store) {
	entries := repo.Load(ctx, *userID)
	if len(entries) == 0 {
		fmt.Printf("No feedback recorded for user %q\n", *userID)
		return
	}

	fmt.Printf("Feedback log for user %q (%d entries, newest first):\n", *userID, len(entries))
	for _, entry := range entries {
		fmt.Printf("  [%d] %s | %q -> %s\n",
			entry.Timestamp, entry.Sender, entry.Subject, entry.UserClassification)
	}
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("llm.provider", *provider)

	switch *provider {
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
	}

	v.Set("store.type", *storeType)
	v.Set("store.sqlite_path", *sqlitePath)

	return config.NewFromViper(v)
}
