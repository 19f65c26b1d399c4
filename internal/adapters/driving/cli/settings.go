package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// stdin is where interactive prompts read from.
var stdin io.Reader = os.Stdin

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure paths, chunking, retrieval and AI providers.

Values come from DOCINTEL_* environment variables first, then the
configuration file, then built-in defaults.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting in the configuration file, for example:
  docintel settings set chunking.chunk_size 300
  docintel settings set retrieval.top_k 5

Run 'docintel settings keys' for the list of keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys and their environment variables",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:       "set-key [embedding|llm]",
	Short:     "Store an API key without echoing it",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"embedding", "llm"},
	RunE:      runSettingsSetKey,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and ping the AI providers",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the provider that turns chunks and questions into vectors.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the provider that writes answers from retrieved passages.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Paths]")
	cmd.Printf("  Documents: %s\n", settings.Paths.Documents)
	cmd.Printf("  Index: %s\n", settings.Paths.Index)
	cmd.Printf("  Database: %s\n", settings.Paths.Database)
	cmd.Printf("  Log: %s\n", orNone(settings.Paths.Log))
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Chunk size: %d words\n", settings.Chunking.ChunkSize)
	cmd.Printf("  Overlap: %d words\n", settings.Chunking.ChunkOverlap)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	if ttl := settings.Retrieval.QueryCacheTTL; ttl > 0 {
		cmd.Printf("  Query cache: %s\n", ttl)
	} else {
		cmd.Println("  Query cache: off")
	}
	cmd.Println()

	e := settings.Embedding
	cmd.Println("[Embedding]")
	printProvider(cmd, e.Provider, e.Model, e.BaseURL, e.APIKey)
	cmd.Printf("  Batch size: %d\n", e.BatchSize)
	if e.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", e.Dimensions)
	}
	printLimits(cmd, e.Timeout.String(), e.RequestsPerSecond)
	cmd.Printf("  Status: %s\n", configuredStatus(e.IsConfigured()))
	cmd.Println()

	l := settings.LLM
	cmd.Println("[LLM]")
	printProvider(cmd, l.Provider, l.Model, l.BaseURL, l.APIKey)
	cmd.Printf("  Temperature: %.2f\n", l.Temperature)
	cmd.Printf("  Max tokens: %d\n", l.MaxTokens)
	printLimits(cmd, l.Timeout.String(), l.RequestsPerSecond)
	cmd.Printf("  Status: %s\n", configuredStatus(l.IsConfigured()))
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'docintel settings llm' or 'docintel settings embedding' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set, export %s)\n", provider.APIKeyEnv())
		}
	}
}

func printLimits(cmd *cobra.Command, timeout string, rps float64) {
	cmd.Printf("  Timeout: %s\n", timeout)
	if rps > 0 {
		cmd.Printf("  Rate limit: %.2f requests/s\n", rps)
	}
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Printf("  %-30s %s\n", key, envName(key))
	}
	return nil
}

// envName mirrors the environment variable naming of the settings service.
func envName(key string) string {
	return "DOCINTEL_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func runSettingsSetKey(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	var provider domain.AIProvider
	var model string
	switch args[0] {
	case "embedding":
		provider, model = settings.Embedding.Provider, settings.Embedding.Model
	case "llm":
		provider, model = settings.LLM.Provider, settings.LLM.Model
	default:
		return fmt.Errorf("%w: expected embedding or llm, got %q", domain.ErrInvalidInput, args[0])
	}
	if !provider.RequiresAPIKey() {
		cmd.Printf("%s does not use an API key.\n", provider.Description())
		return nil
	}

	cmd.Printf("Enter %s API key: ", provider.Description())
	apiKey := readPassword()
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required for this provider")
	}

	if args[0] == "embedding" {
		err = settingsService.SetEmbeddingProvider(provider, model, apiKey)
	} else {
		err = settingsService.SetLLMProvider(provider, model, apiKey)
	}
	if err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}
	cmd.Printf("API key stored: %s\n", maskAPIKey(apiKey))
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var failed bool
	check := func(name string, fn func() error) {
		cmd.Printf("%-12s ", name+"...")
		if err := fn(); err != nil {
			failed = true
			cmd.Printf("FAILED: %v\n", err)
			return
		}
		cmd.Println("OK")
	}

	check("settings", settingsService.Validate)
	check("embedding", settingsService.ValidateEmbeddingConfig)
	check("llm", settingsService.ValidateLLMConfig)

	if failed {
		return errors.New("configuration check failed")
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(stdin)
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(stdin)
	return configureLLMProvider(cmd, reader)
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultEmbeddingModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Printf("Enter API key (empty to use %s): ", selectedProvider.APIKeyEnv())
		apiKey = readPasswordFrom(reader)
		cmd.Println()
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", selectedProvider.Description(), model)
	cmd.Println("Rebuild the index with 'docintel index build' to use the new model.")
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Printf("Enter API key (empty to use %s): ", selectedProvider.APIKeyEnv())
		apiKey = readPasswordFrom(reader)
		cmd.Println()
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret from stdin without echo when stdin is a terminal.
func readPassword() string {
	return readPasswordFrom(bufio.NewReader(stdin))
}

func readPasswordFrom(reader *bufio.Reader) string {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
