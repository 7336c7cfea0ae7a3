package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"studio/internal/infra"
	"studio/internal/infra/credentials"
)

func main() {
	_ = godotenv.Load()

	var (
		keyFlag      string
		providerFlag string
		showFlag     bool
	)
	flag.StringVar(&keyFlag, "key", "", "API key for the selected provider (fallbacks to environment)")
	flag.StringVar(&providerFlag, "provider", credentials.ProviderGemini, "Model provider to configure (gemini or openai)")
	flag.BoolVar(&showFlag, "show", false, "Report whether a key is stored instead of writing one")
	flag.Parse()

	provider, err := normalizeProvider(providerFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "credentials").Str("provider", provider).Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))

	if showFlag {
		token, err := store.Token(ctx, provider)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read %s api key: %v\n", provider, err)
			os.Exit(1)
		}
		fmt.Printf("%s API key: %s\n", strings.ToUpper(provider), mask(token))
		return
	}

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = envKey(provider)
	}
	if key == "" {
		fmt.Fprintf(os.Stderr, "%s API key is required via -key or environment\n", strings.ToUpper(provider))
		os.Exit(1)
	}

	if err := store.SetToken(ctx, provider, key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist %s api key: %v\n", provider, err)
		os.Exit(1)
	}
	fmt.Printf("%s API key stored successfully\n", strings.ToUpper(provider))
}

func normalizeProvider(raw string) (string, error) {
	provider := strings.TrimSpace(strings.ToLower(raw))
	switch provider {
	case credentials.ProviderGemini, credentials.ProviderOpenAI:
		return provider, nil
	case "":
		return credentials.ProviderGemini, nil
	default:
		return "", fmt.Errorf("unsupported provider %q", raw)
	}
}

func envKey(provider string) string {
	if provider == credentials.ProviderOpenAI {
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
	return strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
}

// mask keeps the last four characters of a stored key.
func mask(token string) string {
	switch {
	case token == "":
		return "(not set)"
	case len(token) <= 4:
		return "****"
	default:
		return strings.Repeat("*", 8) + token[len(token)-4:]
	}
}
