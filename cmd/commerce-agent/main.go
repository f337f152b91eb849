// Command commerce-agent runs the conversational commerce assistant as an
// interactive terminal chat. Configuration comes from a YAML file plus
// environment variables; a .env file in the working directory is loaded
// first if present.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"

	commerceagent "github.com/drt-labs-ai/conversional-commerce-agent"
	"github.com/drt-labs-ai/conversional-commerce-agent/config"
	"github.com/drt-labs-ai/conversional-commerce-agent/logging"
)

const greeting = "Hello! I am your Conversational Commerce Assistant. How can I help you today?"

func main() {
	// Best effort; a missing .env is fine.
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "commerce-agent",
		Usage: "chat with the conversational commerce assistant",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to YAML config file", Sources: cli.EnvVars("COMMERCE_AGENT_CONFIG")},
			&cli.StringFlag{Name: "provider", Usage: "model provider (openai or anthropic)", Sources: cli.EnvVars("MODEL_PROVIDER")},
			&cli.StringFlag{Name: "model", Usage: "model name", Sources: cli.EnvVars("MODEL_NAME")},
			&cli.StringFlag{Name: "base-url", Usage: "OpenAI-compatible API base URL (LM Studio, vLLM)", Sources: cli.EnvVars("LLM_BASE_URL")},
			&cli.StringFlag{Name: "occ-url", Usage: "commerce REST API base URL", Sources: cli.EnvVars("OCC_BASE_URL")},
			&cli.BoolFlag{Name: "vector-search", Usage: "enable semantic product search (needs Qdrant and Ollama)", Sources: cli.EnvVars("VECTOR_SEARCH")},
			&cli.StringFlag{Name: "session", Usage: "resume the given session id instead of starting fresh"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}, Usage: "enable debug logging"},
		},
		Action: runChat,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runChat(ctx context.Context, c *cli.Command) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(cfg, c)

	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := logging.NewSlogAdapter(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level})))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	assistant, err := commerceagent.New(ctx, cfg, func(o *commerceagent.Options) {
		o.Logger = logger
	})
	if err != nil {
		return err
	}
	defer assistant.Close()

	sessionID := c.String("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	fmt.Println(greeting)
	fmt.Printf("(session %s, type 'exit' to quit)\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		reply, err := assistant.Chat(ctx, sessionID, line)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Error("chat.turn", "error", err)
			fmt.Println("Sorry, something went wrong. Please try again.")
			continue
		}
		fmt.Println(reply)
	}
	return scanner.Err()
}

// applyFlags lets command line flags override the file and environment.
func applyFlags(cfg *config.Config, c *cli.Command) {
	if v := c.String("provider"); v != "" {
		cfg.Model.Provider = v
	}
	if v := c.String("model"); v != "" {
		cfg.Model.Name = v
	}
	if v := c.String("base-url"); v != "" {
		cfg.Model.BaseURL = v
	}
	if v := c.String("occ-url"); v != "" {
		cfg.Commerce.BaseURL = v
	}
	if c.Bool("vector-search") {
		cfg.VectorSearch.Enabled = true
	}
}
