package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ramihermes/starting-ragchatbot-codebase/internal/agent"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/config"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/llm"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/rag"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/render"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/session"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/store"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/tools"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/version"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ragchat [question]",
		Short:         "ragchat - retrieval-augmented course materials assistant",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			interactive, _ := cmd.Flags().GetBool("interactive")
			if len(args) == 0 && !interactive {
				return fmt.Errorf("provide a question or run with --interactive")
			}

			mockMode := os.Getenv("RAG_MOCK_LLM") == "1"
			logger := buildLogger(cfg.Verbose)
			defer func() { _ = logger.Sync() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			var vectorStore tools.Store
			if mockMode {
				vectorStore = seededMemoryStore(cfg.MaxResults)
			} else {
				embedKey := os.Getenv("OPENAI_API_KEY")
				if embedKey == "" {
					fmt.Fprintln(os.Stderr, "OPENAI_API_KEY is required for embeddings")
					os.Exit(2)
				}
				pool, err := store.NewPool(ctx, cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer pool.Close()
				embedder := store.NewOpenAIEmbedder(embedKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModel)
				pg := store.NewPGVectorStore(pool, embedder, cfg.MaxResults, cfg.EmbeddingDims, logger)
				if err := pg.EnsureSchema(ctx); err != nil {
					return err
				}
				vectorStore = pg
			}

			var client llm.Client
			switch {
			case mockMode:
				client = llm.NewMockClient()
			case cfg.Provider == "openrouter":
				apiKey := os.Getenv("OPENROUTER_API_KEY")
				if apiKey == "" {
					fmt.Fprintln(os.Stderr, "OPENROUTER_API_KEY is required")
					os.Exit(2)
				}
				client = llm.NewOpenRouterClient(apiKey, cfg.OpenRouterBaseURL)
			default:
				apiKey := os.Getenv("ANTHROPIC_API_KEY")
				if apiKey == "" {
					fmt.Fprintln(os.Stderr, "ANTHROPIC_API_KEY is required")
					os.Exit(2)
				}
				client = llm.NewAnthropicClient(apiKey, cfg.AnthropicBaseURL)
			}

			registry := tools.NewRegistry(tools.NewCourseSearchTool(vectorStore))
			sessions := session.NewManager(cfg.MaxHistory)

			var renderer render.Renderer
			if !cfg.JSON {
				renderer = render.NewStdoutRenderer(os.Stdout, cfg.Verbose, cfg.Quiet)
			}
			generator := agent.NewGenerator(client, cfg.Model, renderer, logger)
			system := rag.New(generator, registry, sessions, cfg.Model, renderer, logger)

			if interactive {
				return runInteractive(ctx, cmd, system, cfg.Timeout)
			}
			question := strings.Join(args, " ")
			sessionID, _ := cmd.Flags().GetString("session")
			return runOnce(ctx, system, question, sessionID, cfg.Timeout, cfg.JSON)
		},
	}

	cmd.Flags().String("provider", config.DefaultProvider, "Model provider (anthropic or openrouter)")
	cmd.Flags().String("model", config.DefaultModel, "Model name")
	cmd.Flags().String("database-url", config.DefaultDatabaseURL, "Postgres connection URL")
	cmd.Flags().Int("max-results", config.DefaultMaxResults, "Maximum search results per query")
	cmd.Flags().Int("max-history", config.DefaultMaxHistory, "Exchanges of conversation history kept per session")
	cmd.Flags().String("timeout", config.DefaultTimeout.String(), "Per-query timeout (e.g. 60s)")
	cmd.Flags().String("session", "", "Session id for conversation history")
	cmd.Flags().BoolP("interactive", "i", false, "Interactive chat loop")
	cmd.Flags().Bool("quiet", false, "Only print the answer")
	cmd.Flags().Bool("json", false, "Output JSON only")
	cmd.Flags().Bool("verbose", false, "Enable verbose logging")

	return cmd
}

func runOnce(ctx context.Context, system *rag.System, question, sessionID string, timeout time.Duration, jsonOut bool) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	answer, sources, err := system.Query(ctx, question, sessionID)
	if err != nil {
		return err
	}
	if jsonOut {
		result := rag.QueryResult{
			Answer:     answer,
			Sources:    sources,
			SessionID:  sessionID,
			DurationMs: time.Since(started).Milliseconds(),
		}
		payload, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(os.Stdout, string(payload))
	}
	return nil
}

func runInteractive(ctx context.Context, cmd *cobra.Command, system *rag.System, timeout time.Duration) error {
	sessionID, _ := cmd.Flags().GetString("session")
	if sessionID == "" {
		sessionID = system.Sessions().CreateSession()
	}
	fmt.Fprintf(os.Stdout, "ragchat %s | session: %s | type 'exit' to quit\n", version.Version, sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}
		queryCtx, cancel := context.WithTimeout(ctx, timeout)
		_, _, err := system.Query(queryCtx, question, sessionID)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

// seededMemoryStore backs mock mode with a small fixed corpus so the binary
// runs without credentials or a database.
func seededMemoryStore(maxResults int) *store.MemoryStore {
	s := store.NewMemoryStore(maxResults)
	s.AddCourse("MCP: Build Rich-Context AI Apps", "https://example.com/courses/mcp")
	s.AddLesson("MCP: Build Rich-Context AI Apps", 1, "https://example.com/courses/mcp/lesson1")
	lesson := 1
	s.AddChunk("MCP: Build Rich-Context AI Apps", &lesson,
		"MCP is the Model Context Protocol, an open standard that connects AI applications to external data sources and tools.")
	return s
}
