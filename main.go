package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"jsonlens/config"
	"jsonlens/engine"
	"jsonlens/internal"
	"jsonlens/logger"
	"jsonlens/render"
	"jsonlens/stream"
	"jsonlens/types"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CLI defines the command-line interface
var CLI struct {
	Input         string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Kind          string `help:"Output kind." short:"k" enum:"plain,pretty,color" default:"pretty"`
	Search        string `help:"Search term; prints match locations instead of the rendered view." short:"s"`
	CaseSensitive bool   `help:"Case-sensitive search." short:"c"`
	Stream        bool   `help:"Force streaming mode regardless of input size."`
	Serve         bool   `help:"Run the HTTP service instead of one-shot processing."`
	Version       bool   `help:"Show version information." short:"v"`
}

func main() {
	parser := kong.Must(&CLI,
		kong.Name("jsonlens"),
		kong.Description("Resilient JSON ingestion and conversation normalization"),
		kong.UsageOnError(),
	)
	if _, err := parser.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Println(GetBuildInfo())
		return
	}

	cfg, err := config.LoadConfigWithEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	obs, err := logger.NewObservabilityLogger(cfg.LogDir)
	if err != nil {
		log.Printf("⚠️ Observability logging disabled: %v", err)
		obs = nil
	} else {
		defer obs.Close()
	}

	eng := engine.New(cfg, obs)
	defer eng.Close()

	if CLI.Serve {
		runServer(cfg, eng, obs)
		return
	}

	if err := runOnce(cfg, eng); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// runOnce processes a single document from a file or stdin
func runOnce(cfg *config.Config, eng *engine.Engine) error {
	ctx := internal.WithRequestID(context.Background(), uuid.NewString()[:8])
	opts := types.RenderOptions{
		Kind:          types.ParseRenderKind(CLI.Kind),
		Indent:        cfg.IndentWidth,
		SearchTerm:    CLI.Search,
		CaseSensitive: CLI.CaseSensitive,
	}

	if CLI.Input != "" {
		if info, err := os.Stat(CLI.Input); err == nil {
			if CLI.Stream || info.Size() > cfg.StreamThresholdBytes {
				return runStream(ctx, eng, CLI.Input, opts)
			}
		}
	}

	var raw []byte
	var err error
	if CLI.Input != "" {
		ctx = internal.WithSourcePath(ctx, CLI.Input)
		raw, err = os.ReadFile(CLI.Input)
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	outcome, err := eng.DetectAndParse(ctx, raw, int64(len(raw)))
	if err != nil {
		var repairErr *engine.RepairFailedError
		if errors.As(err, &repairErr) {
			fmt.Fprintf(os.Stderr, "Repair attempted %d fix(es) before giving up:\n", len(repairErr.Result.Operations))
			for _, op := range repairErr.Result.Operations {
				fmt.Fprintf(os.Stderr, "  - %s [%d:%d] %s\n", op.Kind, op.Start, op.End, op.Detail)
			}
		}
		return err
	}

	if outcome.Repair != nil {
		fmt.Fprintf(os.Stderr, "🔧 Repaired with %d operation(s) in %d attempt(s):\n",
			len(outcome.Repair.Operations), outcome.Repair.Attempts)
		for _, op := range outcome.Repair.Operations {
			fmt.Fprintf(os.Stderr, "  - %s [%d:%d] %s\n", op.Kind, op.Start, op.End, op.Detail)
		}
	}

	if CLI.Search != "" {
		matches := eng.Search(outcome.Value, outcome.Format, CLI.Search, CLI.CaseSensitive)
		for _, m := range matches {
			if m.Path != "" {
				fmt.Printf("%s\n", m.Path)
			} else {
				fmt.Printf("turn %d (%s)\n", m.Index, m.Role)
			}
		}
		return nil
	}

	out, _, err := eng.RenderCached(ctx, raw, outcome.Value, outcome.Format, opts)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// runStream renders each top-level element as it arrives
func runStream(ctx context.Context, eng *engine.Engine, path string, opts types.RenderOptions) error {
	ctx = internal.WithSourcePath(ctx, path)
	summary, err := eng.Stream(ctx, path, func(el stream.Element) error {
		if el.Format.IsConversation() {
			if turn, ok := turnFromStreamed(el); ok {
				fmt.Print(render.RenderTurn(turn, opts))
				return nil
			}
		}
		fmt.Println(render.Render(el.Value, types.FormatGeneric, opts))
		return nil
	})
	if summary != nil {
		fmt.Fprintf(os.Stderr, "📊 %d element(s), format=%s, mixed=%t, %d bytes\n",
			summary.Elements, summary.Format, summary.Mixed, summary.Bytes)
	}
	return err
}

func turnFromStreamed(el stream.Element) (types.Turn, bool) {
	obj, ok := el.Value.(*types.Object)
	if !ok {
		return types.Turn{}, false
	}
	roleKey, contentKey := "role", "content"
	if el.Format == types.FormatMessageV2 {
		roleKey, contentKey = "source", "body"
	}
	role, _ := obj.StringValue(roleKey)
	content, ok := obj.StringValue(contentKey)
	if role == "" || !ok {
		return types.Turn{}, false
	}
	return types.Turn{Role: role, Content: content, Ordinal: el.Index}, true
}

// runServer exposes the engine over HTTP in the same layout the one-shot
// mode uses: render requests, health, and prometheus metrics.
func runServer(cfg *config.Config, eng *engine.Engine, obs *logger.ObservabilityLogger) {
	fmt.Println(GetBuildInfo())
	fmt.Println()

	if obs != nil {
		obs.Info(logger.ComponentEngine, logger.CategoryRequest, "", "jsonlens service starting", map[string]interface{}{
			"port":             cfg.Port,
			"stream_threshold": cfg.StreamThresholdBytes,
			"cache_ttl":        cfg.CacheTTL.String(),
			"repair_budget":    cfg.RepairBudget,
			"version":          GetVersionInfo(),
		})
	}

	http.HandleFunc("/", handleRoot)
	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/v1/render", makeRenderHandler(cfg, eng))
	http.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("✅ jsonlens listening on http://localhost:%s", cfg.Port)
	if err := server.ListenAndServe(); err != nil {
		if obs != nil {
			obs.Error(logger.ComponentEngine, logger.CategoryError, "", "Server failed to start", map[string]interface{}{"error": err.Error()})
		}
		log.Fatalf("Server failed to start: %v", err)
	}
}

// cliLoggerConfig adapts Config to the leveled logger's settings interface
type cliLoggerConfig struct {
	cfg *config.Config
}

func (c *cliLoggerConfig) GetMinLogLevel() logger.Level {
	return logger.ParseLevel(c.cfg.MinLogLevel)
}

func (c *cliLoggerConfig) ShouldTruncateContent() bool {
	return c.cfg.TruncateContent
}

// makeRenderHandler builds the POST /v1/render handler. The request body is
// the raw document; render options come from query parameters.
func makeRenderHandler(cfg *config.Config, eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		requestID := uuid.NewString()[:8]
		ctx := internal.WithRequestID(r.Context(), requestID)
		lg := logger.New(ctx, &cliLoggerConfig{cfg: cfg}).WithComponent(logger.ComponentEngine)

		raw, err := io.ReadAll(io.LimitReader(r.Body, cfg.StreamThresholdBytes+1))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		if int64(len(raw)) > cfg.StreamThresholdBytes {
			http.Error(w, "request body exceeds the in-memory size threshold", http.StatusRequestEntityTooLarge)
			return
		}

		opts := types.DefaultRenderOptions()
		opts.Indent = cfg.IndentWidth
		if kind := r.URL.Query().Get("kind"); kind != "" {
			opts.Kind = types.ParseRenderKind(kind)
		}

		outcome, err := eng.DetectAndParse(ctx, raw, int64(len(raw)))
		if err != nil {
			lg.Warn("Rejected document: %v", err)
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		out, hit, err := eng.RenderCached(ctx, raw, outcome.Value, outcome.Format, opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		lg.Info("Rendered %d byte document as %s (format=%s, cache=%t)",
			len(raw), opts.Kind, outcome.Format, hit)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Request-Id", requestID)
		w.Header().Set("X-Conversation-Format", outcome.Format.String())
		w.Header().Set("X-Cache", map[bool]string{true: "hit", false: "miss"}[hit])
		fmt.Fprint(w, out)
	}
}

// handleRoot provides basic information about the service
func handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{
	"service": "jsonlens",
	"status": "running",
	"endpoints": [
		"GET /health - Health check",
		"POST /v1/render - Parse, repair if needed, classify and render a JSON document",
		"GET /metrics - Prometheus metrics"
	]
}`)
}

// handleHealth provides a simple health check endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{
	"status": "ok",
	"timestamp": "%s"
}`, time.Now().UTC().Format(time.RFC3339))
}
