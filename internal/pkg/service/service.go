package service

import (
	"context"
	"log"
	"strconv"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/facebookgo/grace/gracehttp"
	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/sahara-wellness/backend/internal/pkg/service/api"
)

type (
	// Chat produces the companion reply for a user message
	Chat interface {
		Reply(ctx context.Context, userID, message string) (*api.ChatReply, error)
	}

	// ResourceStore keeps wellness resources
	ResourceStore interface {
		ListResources(ctx context.Context, limit int) ([]map[string]interface{}, error)
		GetResource(ctx context.Context, id string) (map[string]interface{}, error)
		CreateResource(ctx context.Context, data map[string]interface{}) (string, error)
		UpdateResource(ctx context.Context, id string, data map[string]interface{}) error
		DeleteResource(ctx context.Context, id string) error
	}

	// JournalStore saves journal entries
	JournalStore interface {
		AddJournalEntry(ctx context.Context, userID string, entry map[string]interface{}) error
	}

	// Admission guards routes with quota checks
	Admission interface {
		Handle(withGlobal bool) echo.MiddlewareFunc
	}

	// RateLimit guards routes with a short window request limit
	RateLimit interface {
		Handle(next echo.HandlerFunc) echo.HandlerFunc
	}

	//Data is service operation data
	Data struct {
		Port int

		Chat      Chat
		Resources ResourceStore
		Journal   JournalStore
		Admission Admission
		RateLimit RateLimit

		Version string
		Debug   map[string]interface{}
	}
)

//StartWebServer starts the HTTP service and listens for the requests
func StartWebServer(data *Data) error {
	goapp.Log.Info().Msgf("Starting HTTP sahara service at %d", data.Port)
	e, err := initRoutes(data)
	if err != nil {
		return errors.Wrap(err, "can't init routes")
	}

	portStr := strconv.Itoa(data.Port)
	e.Server.Addr = ":" + portStr

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	return gracehttp.Serve(e.Server)
}

func initRoutes(data *Data) (*echo.Echo, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	p := prometheus.NewPrometheus("sahara", nil)
	p.Use(e)

	// the rate limiter runs before admission so a rejected burst does
	// not consume quota units
	chatMW := []echo.MiddlewareFunc{}
	if data.RateLimit != nil {
		chatMW = append(chatMW, data.RateLimit.Handle)
	}
	chatMW = append(chatMW, data.Admission.Handle(true))

	e.GET("/", live(data))
	e.GET("/_debug", debug(data))
	e.POST("/chat", chat(data), chatMW...)

	guard := data.Admission.Handle(false)
	e.GET("/resources", resourceList(data), guard)
	e.POST("/resources", resourceCreate(data), guard)
	e.GET("/resources/:id", resourceGet(data), guard)
	e.PUT("/resources/:id", resourceUpdate(data), guard)
	e.DELETE("/resources/:id", resourceDelete(data), guard)
	e.POST("/journal/sync", journalSync(data), guard)

	goapp.Log.Info().Msg("Routes:")
	for _, r := range e.Routes() {
		goapp.Log.Info().Msgf("  %s %s", r.Method, r.Path)
	}
	return e, nil
}

func validate(data *Data) error {
	if data.Chat == nil {
		return errors.New("no chat service")
	}
	if data.Resources == nil {
		return errors.New("no resource store")
	}
	if data.Journal == nil {
		return errors.New("no journal store")
	}
	if data.Admission == nil {
		return errors.New("no admission middleware")
	}
	return nil
}
