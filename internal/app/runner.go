package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/samvad-hq/samvad-invoker/internal/config"
	"github.com/samvad-hq/samvad-invoker/internal/invoker"
	"github.com/samvad-hq/samvad-invoker/internal/logger"
	"github.com/samvad-hq/samvad-invoker/internal/render"
	"github.com/samvad-hq/samvad-invoker/internal/storage"
	"github.com/samvad-hq/samvad-invoker/pkg/httpclient"
	"github.com/samvad-hq/samvad-invoker/pkg/payload"
	"github.com/samvad-hq/samvad-invoker/pkg/sinks"
)

// Runner performs one invocation: resolve the payload, call the endpoint,
// print the decoded value, then record and forward the exchange.
type Runner struct {
	cfg     *config.Config
	invoker *invoker.Invoker
	fanout  *sinks.Fanout
	store   storage.Store
	log     logger.Logger
	out     io.Writer
}

// NewRunner builds a runner from config. out defaults to stdout.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = os.Stdout
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		EntryTTL:        cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"entry_ttl_seconds":        int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	inv := invoker.New(httpclient.NewRestyClient(cfg.HTTPTimeout), invoker.WithLogger(log))

	return &Runner{
		cfg:     cfg,
		invoker: inv,
		fanout:  fanout,
		store:   store,
		log:     log,
		out:     out,
	}, nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*sinks.Fanout, error) {
	if cfg.SinksFile == "" {
		return sinks.NewFanout(nil), nil
	}

	reg, err := sinks.LoadRegistry(cfg.SinksFile)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}
	enabled := reg.Enabled()
	built, err := sinks.BuildAll(ctx, sinks.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, s := range enabled {
		summaries = append(summaries, map[string]string{"id": s.ID, "type": s.Type})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return sinks.NewFanout(built), nil
}

// Run performs the single request/response exchange. It never retries.
func (r *Runner) Run(ctx context.Context) error {
	if r == nil || r.invoker == nil {
		return fmt.Errorf("runner is not initialized")
	}
	defer r.close()

	body, err := payload.Resolve(r.cfg.Payload, r.cfg.PayloadFile)
	if err != nil {
		return fmt.Errorf("resolve payload: %w", err)
	}

	resp, err := r.invoker.Invoke(ctx, invoker.Request{
		Method:   r.cfg.Method,
		Endpoint: r.cfg.Endpoint,
		Payload:  body,
	})
	if err != nil {
		r.log.ErrorObj("invocation failed", "invocation_error", map[string]any{
			"endpoint": r.cfg.Endpoint,
			"kind":     errorKind(err),
			"error":    err.Error(),
		})
		return err
	}

	if err := render.Render(r.out, resp.Value, r.cfg.OutputFormat); err != nil {
		return err
	}

	exchange := resp.Exchange()
	if err := r.store.Record(exchange); err != nil {
		r.log.WarnObj("journal record failed", "error", err)
	}

	delivered, err := r.fanout.Publish(ctx, sinks.NewEvent(exchange))
	r.log.InfoObj("exchange completed", "exchange_meta", map[string]any{
		"request_id":      exchange.RequestID,
		"status_code":     exchange.StatusCode,
		"elapsed_ms":      exchange.ElapsedMs,
		"sinks_delivered": delivered,
		"sinks_total":     r.fanout.Size(),
	})
	if err != nil {
		return fmt.Errorf("publish exchange: %w", err)
	}
	return nil
}

func errorKind(err error) string {
	if _, ok := invoker.IsNetworkError(err); ok {
		return "network"
	}
	if _, ok := invoker.IsDecodeError(err); ok {
		return "decode"
	}
	return "request"
}

// close releases the journal and sink clients, logging any errors encountered.
func (r *Runner) close() {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("sinks close failed", "error", err)
	}
}
