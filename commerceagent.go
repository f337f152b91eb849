// Package commerceagent provides a high-level façade over the orchestration
// graph for the conversational commerce assistant. Most applications
// interact with this package by:
//  1. Loading a config.Config (file, environment or defaults)
//  2. Creating an Assistant via New() (optionally overriding the model,
//     session store or logger)
//  3. Calling Chat() once per user utterance
//
// The façade wires the supervisor, the two commerce specialists and their
// tool bindings, and delegates turn execution to runner.Runner. All
// defaults are safe for local development; production deployments supply a
// durable session store and a structured logger.
package commerceagent

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"

	"github.com/drt-labs-ai/conversional-commerce-agent/agent"
	"github.com/drt-labs-ai/conversional-commerce-agent/commerce"
	"github.com/drt-labs-ai/conversional-commerce-agent/config"
	"github.com/drt-labs-ai/conversional-commerce-agent/core"
	"github.com/drt-labs-ai/conversional-commerce-agent/graph"
	"github.com/drt-labs-ai/conversional-commerce-agent/logging"
	"github.com/drt-labs-ai/conversional-commerce-agent/model"
	anthropicmodel "github.com/drt-labs-ai/conversional-commerce-agent/model/anthropic"
	openaimodel "github.com/drt-labs-ai/conversional-commerce-agent/model/openai"
	"github.com/drt-labs-ai/conversional-commerce-agent/runner"
	"github.com/drt-labs-ai/conversional-commerce-agent/session"
	"github.com/drt-labs-ai/conversional-commerce-agent/tool"
	"github.com/drt-labs-ai/conversional-commerce-agent/tool/mcptool"
	"github.com/drt-labs-ai/conversional-commerce-agent/vectorsearch"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
)

// Specialist names. They double as graph state names and router decisions.
const (
	SearchAgentName = "SearchAgent"
	CartAgentName   = "CartAgent"
)

const (
	searchAgentInstructions = "You are a Product Search Specialist. Use vector_search for vague queries and search_products for specific ones. " +
		"Provide product details when asked. If the user wants to buy, refer them to the CartAgent."

	cartAgentInstructions = "You are a Cart and Checkout Specialist. specialized in managing the shopping cart. " +
		"You can create carts, add items, view cart, and place orders. " +
		"Always confirm details before placing an order."

	routerInstructions = "You are the supervisor. You have workers: SearchAgent, CartAgent. \n" +
		"Decide who should act next.\n" +
		"1. If the user wants to search for products or get details -> SearchAgent\n" +
		"2. If the user wants to manage cart or checkout -> CartAgent\n" +
		"3. If the answer is provided or conversation is over -> FINISH\n" +
		"Return ONLY the name: SearchAgent or CartAgent or FINISH."
)

// Options configure the Assistant.
type Options struct {
	// Model overrides the chat model built from the config.
	Model model.Model
	// Store overrides the session store built from the config (file-backed
	// when session.dir is set, in-memory otherwise).
	Store session.Store
	// ExtraTools are registered alongside the built-in commerce tools and
	// routed to a specialist by name, like MCP-loaded tools.
	ExtraTools []tool.Tool
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Assistant is the assembled conversational commerce agent.
type Assistant struct {
	runner *runner.Runner
	store  session.Store
	loader *mcptool.Loader
	logger logging.Logger
}

// New builds an Assistant from the config: it constructs the model and the
// tool catalog (commerce REST tools, optional vector search, optional MCP
// servers), splits the catalog between the two specialists and compiles the
// graph. The context bounds MCP server connection time only.
func New(ctx context.Context, cfg *config.Config, optFns ...func(o *Options)) (*Assistant, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Store == nil {
		store, err := buildStore(cfg)
		if err != nil {
			return nil, err
		}
		opts.Store = store
	}

	llm := opts.Model
	if llm == nil {
		var err error
		if llm, err = buildModel(cfg); err != nil {
			return nil, err
		}
	}

	registry := tool.NewRegistry(commerceTools(cfg)...)
	if cfg.VectorSearch.Enabled {
		embedder := vectorsearch.NewOllamaEmbedder(cfg.VectorSearch.OllamaURL, func(o *vectorsearch.OllamaEmbedderOptions) {
			o.Model = cfg.VectorSearch.EmbedModel
		})
		qdrant := vectorsearch.NewClient(cfg.VectorSearch.QdrantURL, embedder, func(o *vectorsearch.ClientOptions) {
			o.Collection = cfg.VectorSearch.Collection
		})
		registry.Register(vectorsearch.Tool(qdrant))
	}

	loader, err := loadMCPTools(ctx, cfg, registry, opts.Logger)
	if err != nil {
		return nil, err
	}
	registry.Register(opts.ExtraTools...)

	windowOpt := func(o *agent.NodeOptions) {
		o.Window = cfg.Engine.Window
		o.Logger = opts.Logger
	}
	searchNode := agent.NewNode(SearchAgentName, searchAgentInstructions, llm, searchTools(registry), windowOpt)
	cartNode := agent.NewNode(CartAgentName, cartAgentInstructions, llm, cartTools(registry), windowOpt)

	router := agent.NewRouter(llm, []string{SearchAgentName, CartAgentName}, func(o *agent.RouterOptions) {
		o.Window = cfg.Engine.Window
		o.Instructions = routerInstructions
		o.Logger = opts.Logger
	})

	g, err := graph.New(router, []*agent.Node{searchNode, cartNode}, opts.Store, func(o *graph.Options) {
		o.MaxSteps = cfg.Engine.MaxSteps
		o.Logger = opts.Logger
	})
	if err != nil {
		if loader != nil {
			loader.Close()
		}
		return nil, err
	}

	r := runner.New(g, opts.Store, func(o *runner.Options) { o.Logger = opts.Logger })

	return &Assistant{runner: r, store: opts.Store, loader: loader, logger: opts.Logger}, nil
}

// Chat runs one conversation turn and returns the assistant's reply text.
func (a *Assistant) Chat(ctx context.Context, sessionID, userText string) (string, error) {
	msg, err := a.runner.Run(ctx, sessionID, userText)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

// History returns the full checkpointed conversation for a session.
func (a *Assistant) History(sessionID string) ([]core.Message, error) {
	return a.runner.History(sessionID)
}

// Close releases external resources (MCP server sessions).
func (a *Assistant) Close() error {
	if a.loader != nil {
		return a.loader.Close()
	}
	return nil
}

func buildStore(cfg *config.Config) (session.Store, error) {
	if cfg.Session.Dir != "" {
		return session.NewFileStore(cfg.Session.Dir)
	}
	return session.NewInMemoryStore(), nil
}

func buildModel(cfg *config.Config) (model.Model, error) {
	switch strings.ToLower(cfg.Model.Provider) {
	case "openai":
		return openaimodel.New(func(o *openaimodel.Options) {
			o.Model = cfg.Model.Name
			o.BaseURL = cfg.Model.BaseURL
			o.APIKey = cfg.Model.APIKey
		}), nil
	case "anthropic":
		return anthropicmodel.New(func(o *anthropicmodel.Options) {
			o.Model = anthropicsdk.Model(cfg.Model.Name)
			o.APIKey = cfg.Model.APIKey
		}), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
	}
}

func commerceTools(cfg *config.Config) []tool.Tool {
	client := commerce.NewClient(cfg.Commerce.BaseURL, func(o *commerce.ClientOptions) {
		if cfg.Commerce.Site != "" {
			o.Site = cfg.Commerce.Site
		}
		if cfg.Commerce.User != "" {
			o.User = cfg.Commerce.User
		}
		if cfg.Commerce.Insecure {
			o.HTTPClient = &http.Client{
				Timeout: o.Timeout,
				Transport: &http.Transport{
					TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
				},
			}
		}
	})
	return commerce.Tools(client)
}

func loadMCPTools(ctx context.Context, cfg *config.Config, registry *tool.Registry, logger logging.Logger) (*mcptool.Loader, error) {
	if len(cfg.MCPServers) == 0 {
		return nil, nil
	}
	loader := mcptool.NewLoader(func(o *mcptool.Options) { o.Logger = logger })
	for _, srv := range cfg.MCPServers {
		var (
			tools []tool.Tool
			err   error
		)
		if srv.Command != "" {
			tools, err = loader.LoadCommand(ctx, srv.Command, srv.Args...)
		} else {
			tools, err = loader.LoadSSE(ctx, srv.Endpoint)
		}
		if err != nil {
			loader.Close()
			return nil, fmt.Errorf("load MCP server %q: %w", srv.Name, err)
		}
		registry.Register(tools...)
	}
	return loader, nil
}

// searchTools selects the catalog subset for the search specialist: lookup
// tools plus semantic search.
func searchTools(registry *tool.Registry) []tool.Tool {
	return registry.Filter(func(name string) bool {
		return strings.Contains(name, "search") || strings.Contains(name, "details")
	})
}

// cartTools selects the catalog subset for the cart specialist.
func cartTools(registry *tool.Registry) []tool.Tool {
	return registry.Filter(func(name string) bool {
		return strings.Contains(name, "cart") || strings.Contains(name, "order")
	})
}
