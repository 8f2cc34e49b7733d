package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/labstack/gommon/color"
	"github.com/sahara-wellness/backend/internal/pkg/chat"
	"github.com/sahara-wellness/backend/internal/pkg/firestore"
	"github.com/sahara-wellness/backend/internal/pkg/handler"
	"github.com/sahara-wellness/backend/internal/pkg/postgres"
	"github.com/sahara-wellness/backend/internal/pkg/quota"
	"github.com/sahara-wellness/backend/internal/pkg/ratelimit"
	"github.com/sahara-wellness/backend/internal/pkg/service"
	"github.com/sahara-wellness/backend/internal/pkg/summary"
	"github.com/sahara-wellness/backend/internal/pkg/utils"
	"github.com/sahara-wellness/backend/internal/pkg/vertex"
	"github.com/spf13/viper"
)

func main() {
	goapp.StartWithDefault()
	log.Logger = goapp.Log
	zerolog.DefaultContextLogger = &goapp.Log

	if err := mainInt(context.Background()); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func mainInt(ctx context.Context) error {
	cfg := goapp.Config
	cfg.SetDefault("port", 8000)
	cfg.SetDefault("quota.defaultDailyLimit", 50)
	cfg.SetDefault("quota.globalDailyLimit", 240)
	cfg.SetDefault("model.callTimeout", "20s")
	cfg.SetDefault("rateLimit.window", 60)
	cfg.SetDefault("rateLimit.limit", 30)

	tp, err := initTracer(ctx, cfg.GetString("otel.exporter.otlp.endpoint"))
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	if tp != nil {
		defer func() {
			ctx, cf := context.WithTimeout(context.Background(), time.Second*5)
			defer cf()
			if err := tp.Shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to shutdown OpenTelemetry")
			}
		}()
	}

	fsStore, err := firestore.NewStore(ctx, cfg.GetString("firestore.project"))
	if err != nil {
		return fmt.Errorf("init firestore: %w", err)
	}
	defer fsStore.Close()

	keyStore, counterStore, err := initQuotaStores(ctx, cfg, fsStore)
	if err != nil {
		return fmt.Errorf("init quota stores: %w", err)
	}

	storeTimeout := cfg.GetDuration("quota.storeTimeout")
	enforcer, err := quota.NewEnforcer(keyStore, cfg.GetInt64("quota.defaultDailyLimit"), storeTimeout)
	if err != nil {
		return fmt.Errorf("init enforcer: %w", err)
	}
	failOpen := cfg.GetBool("quota.failOpen")
	governor, err := quota.NewGovernor(counterStore, cfg.GetInt64("quota.globalDailyLimit"),
		failOpen, storeTimeout)
	if err != nil {
		return fmt.Errorf("init governor: %w", err)
	}
	pipeline, err := quota.NewPipeline(enforcer, governor)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	model, err := vertex.NewClient(ctx, cfg.GetString("firestore.project"),
		cfg.GetString("model.location"), cfg.GetString("model.name"),
		cfg.GetDuration("model.callTimeout"))
	if err != nil {
		return fmt.Errorf("init model client: %w", err)
	}
	defer model.Close()

	ctxWorker, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	worker, doneCh, err := summary.StartWorker(ctxWorker, &summary.Data{Generator: model, Saver: fsStore})
	if err != nil {
		return fmt.Errorf("start summary worker: %w", err)
	}

	chatSrv, err := chat.NewService(fsStore, model, worker)
	if err != nil {
		return fmt.Errorf("init chat service: %w", err)
	}

	admission, err := handler.NewAdmissionMiddleware(pipeline)
	if err != nil {
		return fmt.Errorf("init admission: %w", err)
	}

	data := service.Data{}
	data.Port = cfg.GetInt("port")
	data.Chat = chatSrv
	data.Resources = fsStore
	data.Journal = fsStore
	data.Admission = admission
	data.Version = version
	data.Debug = map[string]interface{}{
		"firestore_initialized": true,
		"model_ready":           true,
		"quota_fail_open":       failOpen,
	}

	if t := cfg.GetString("ipExtractType"); t != "" {
		utils.DefaultIPExtractor, err = utils.NewIPExtractor(t)
		if err != nil {
			return fmt.Errorf("init IP extractor: %w", err)
		}
	}

	if url := cfg.GetString("rateLimit.url"); url != "" {
		rl, err := ratelimit.NewRedisRateLimiter(url, cfg.GetInt64("rateLimit.window"))
		if err != nil {
			return fmt.Errorf("init rate limiter: %w", err)
		}
		data.RateLimit, err = handler.NewRateLimitMiddleware(rl, cfg.GetInt64("rateLimit.limit"))
		if err != nil {
			return fmt.Errorf("init rate limit middleware: %w", err)
		}
	}

	printBanner()

	err = service.StartWebServer(&data)
	if err != nil {
		return fmt.Errorf("start web server: %w", err)
	}

	cancelWorker()
	select {
	case <-doneCh:
		log.Info().Msg("All code returned. Now exit. Bye")
	case <-time.After(time.Second * 15):
		log.Warn().Msg("Timeout gracefull shutdown")
	}
	return nil
}

func initQuotaStores(ctx context.Context, cfg *viper.Viper, fsStore *firestore.Store) (quota.KeyStore, quota.CounterStore, error) {
	st := cfg.GetString("store.type")
	switch st {
	case "", "firestore":
		return fsStore, fsStore, nil
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.GetString("db.dsn"))
		if err != nil {
			return nil, nil, fmt.Errorf("init db: %w", err)
		}
		pgStore, err := postgres.NewStore(db)
		if err != nil {
			return nil, nil, fmt.Errorf("init pg store: %w", err)
		}
		return pgStore, pgStore, nil
	}
	return nil, nil, fmt.Errorf("unknown store type '%s'", st)
}

var (
	version string
)

func printBanner() {
	banner := `
   _____       __
  / ___/____ _/ /_  ____ __________ _
  \__ \/ __ ` + "`" + `/ __ \/ __ ` + "`" + `/ ___/ __ ` + "`" + `/
 ___/ / /_/ / / / / /_/ / /  / /_/ /
/____/\__,_/_/ /_/\__,_/_/   \__,_/
    __               __                  __
   / /_  ____ ______/ /_____  ____  ____/ /
  / __ \/ __ ` + "`" + `/ ___/ //_/ _ \/ __ \/ __  /
 / /_/ / /_/ / /__/ ,< /  __/ / / / /_/ /
/_.___/\__,_/\___/_/|_|\___/_/ /_/\__,_/  v: %s

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/sahara-wellness/backend"))
}

func initTracer(ctx context.Context, tracerURL string) (*trace.TracerProvider, error) {
	if tracerURL == "" {
		log.Ctx(ctx).Warn().Msg("No tracer URL set, skipping OpenTelemetry initialization.")
		return nil, nil
	}

	propagator := propagation.NewCompositeTextMapPropagator(propagation.Baggage{}, propagation.TraceContext{})
	otel.SetTextMapPropagator(propagator)

	log.Ctx(ctx).Info().Str("url", tracerURL).Msg("Setting up OpenTelemetry")
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(tracerURL),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "sahara-backend"),
			attribute.String("service.version", version),
		)),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}
