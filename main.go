package main

import (
	"bgeval/internal/api"
	"bgeval/internal/gnubg"
	"bgeval/internal/openapi"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	oapimiddleware "github.com/deepmap/oapi-codegen/pkg/middleware"
	"github.com/flowchartsman/swaggerui"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func main() {
	var dataDir = readEnv("BGEVAL_DATADIR", "./data")
	var port = readEnv("BGEVAL_PORT", "8080")
	var trials = readEnv("BGEVAL_TRIALS", strconv.Itoa(gnubg.DefaultTrials))
	var logLevel = readEnv("BGEVAL_LOGLEVEL", "warn")

	nTrials, err := strconv.Atoi(trials)
	if err != nil || nTrials < 1 {
		panic(fmt.Sprintf("BGEVAL_TRIALS must be a positive integer, got %q", trials))
	}

	lvl, err := parseLogLevel(logLevel)
	if err != nil {
		panic(err)
	}
	gnubg.Logger().SetLevel(lvl)

	if err := gnubg.Init(os.DirFS(dataDir)); err != nil {
		panic(err)
	}
	defer gnubg.Destroy()

	e, err := newEcho(nTrials)
	if err != nil {
		panic(err)
	}
	e.Logger.SetLevel(lvl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatalf("shutting down the server: %v", err)
		}
	}()

	<-ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}

func newEcho(trials int) (*echo.Echo, error) {
	swagger, err := openapi.GetSwagger()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	v1 := e.Group("/api/v1", oapimiddleware.OapiRequestValidator(swagger))
	openapi.RegisterHandlers(v1, &server{trials: trials})

	e.GET("/swagger/*", echo.WrapHandler(http.StripPrefix("/swagger", swaggerui.Handler(openapi.Document()))))
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/swagger/")
	})

	return e, nil
}

type server struct {
	trials int
}

func (s *server) PostRaceprobs(c echo.Context) error {
	var args openapi.PostRaceprobsJSONRequestBody

	if err := c.Bind(&args); err != nil {
		return err
	}

	res, err := api.RaceProbs(args, s.trials)

	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, res)
}

func (s *server) PostRaceprobsBatch(c echo.Context) error {
	var args openapi.PostRaceprobsBatchJSONRequestBody

	if err := new(echo.DefaultBinder).BindBody(c, &args); err != nil {
		return err
	}

	res, err := api.RaceProbsBatch(c.Request().Context(), args, s.trials)

	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, res)
}

func (s *server) PostEvaluate(c echo.Context) error {
	var args openapi.PostEvaluateJSONRequestBody

	if err := c.Bind(&args); err != nil {
		return err
	}

	res, err := api.Evaluate(args)

	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, res)
}

func (s *server) GetInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, api.GetInfo())
}

// httpError maps caller mistakes to 400; anything else is left to echo's
// error handler as a 500.
func httpError(err error) error {
	for _, target := range []error{gnubg.ErrInvalidArgument, gnubg.ErrDimensionMismatch, gnubg.ErrNotLoaded} {
		if errors.Is(err, target) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return err
}

func parseLogLevel(s string) (log.Lvl, error) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG, nil
	case "info":
		return log.INFO, nil
	case "warn":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func readEnv(name string, defaultValue string) string {
	var env = os.Getenv(name)
	if len(env) > 0 {
		return env
	}
	return defaultValue
}
