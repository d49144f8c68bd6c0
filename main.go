package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	controllerx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/agents/controller"
	speakerx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/agents/speaker"
	catalogx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/catalog"
	contractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/contract"
	extractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/extract"
	llmx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/llm"
	promptx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/prompt"
	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
	toolx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/tool"
	configx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/pkg/config"
	_ "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/pkg/openrouter"
	resendx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/pkg/resend"
)

type AppConfig struct {
	CatalogPath   string `envconfig:"CATALOG_PATH" split_words:"true" default:"data/parts.json"`
	ExtractorMode string `envconfig:"EXTRACTOR_MODE" split_words:"true" default:"keyword"`
	StoreBackend  string `envconfig:"STORE_BACKEND" split_words:"true" default:"memory"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}

	prompts := promptx.LoadPromptSet()

	catalog, err := catalogx.Load(appCfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", appCfg.CatalogPath).Msg("failed to load parts catalog")
	}

	store, cleanup, err := newStore(ctx, appCfg.StoreBackend)
	if err != nil {
		log.Fatal().Err(err).Str("backend", appCfg.StoreBackend).Msg("failed to initialize session store")
	}
	defer cleanup()

	speakerCfg := llmCfg.OpenRouterFor(contractx.RoleSpeaker)
	if openrouterx.NewClient(speakerCfg) == nil {
		log.Fatal().Msg("failed to initialize openrouter client")
	}
	speakerModel, err := speakerCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create speaker model")
	}
	speaker, err := speakerx.New(ctx, speakerModel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build speaker")
	}

	extractor, err := newExtractor(ctx, appCfg.ExtractorMode, llmCfg, prompts)
	if err != nil {
		log.Fatal().Err(err).Str("mode", appCfg.ExtractorMode).Msg("failed to build extractor")
	}

	mailer := newMailer()

	dispatcher, err := toolx.NewDispatcher(catalog, mailer, speaker, prompts.ToolResult)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build tool dispatcher")
	}

	ctrl, err := controllerx.New(store, extractor, speaker, dispatcher, prompts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build turn controller")
	}

	runREPL(ctx, ctrl)
}

func newStore(ctx context.Context, backend string) (statex.Store, func(), error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "memory":
		return statex.NewMemoryStore(), func() {}, nil
	case "upstash":
		cfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		store, err := statex.NewUpstashRedisStore(*cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "postgres":
		cfg := configx.MustNew[statex.PostgresConfig]("POSTGRES")
		store, err := statex.NewPostgresStore(*cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Init(ctx); err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func newExtractor(ctx context.Context, mode string, llmCfg *llmx.Config, prompts promptx.PromptSet) (contractx.Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "keyword":
		return extractx.NewKeywordExtractor(), nil
	case "llm":
		extractorCfg := llmCfg.OpenRouterFor(contractx.RoleExtractor)
		extractorModel, err := extractorCfg.New(ctx)
		if err != nil {
			return nil, err
		}
		return extractx.NewLLMExtractor(ctx, extractorModel, prompts.Extractor)
	default:
		return nil, fmt.Errorf("unknown extractor mode %q", mode)
	}
}

// newMailer returns nil when email delivery is not configured; the
// dispatcher reports the email tool as unavailable in that case.
func newMailer() contractx.Mailer {
	if strings.TrimSpace(os.Getenv("RESEND_API_KEY")) == "" {
		log.Info().Msg("RESEND_API_KEY not set, email summaries disabled")
		return nil
	}
	return resendx.MustNew(*configx.MustNew[resendx.Config]("RESEND"))
}

func runREPL(ctx context.Context, ctrl *controllerx.Controller) {
	sessionID := uuid.NewString()
	log.Info().Str("session_id", sessionID).Msg("starting dialogue session")

	fmt.Println("Appliance parts assistant. Type a message, or 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			break
		}

		result, err := ctrl.HandleMessage(ctx, sessionID, text)
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			fmt.Println("Sorry, something went wrong. Please try again.")
			continue
		}
		fmt.Println(result.Reply)
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("stdin read failed")
	}
}
