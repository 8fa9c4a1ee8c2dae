// Package openapi holds the HTTP models and echo routing of the bgeval API,
// in the shape oapi-codegen produces for openapi.yaml.
package openapi

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
)

//go:embed openapi.yaml
var document []byte

// Defines values for Player.
const (
	PlayerO Player = "o"
	PlayerX Player = "x"
)

// Defines values for NetName.
const (
	NetNameContact        NetName = "contact"
	NetNameCrashed        NetName = "crashed"
	NetNamePruningContact NetName = "pruning-contact"
	NetNamePruningCrashed NetName = "pruning-crashed"
	NetNamePruningRace    NetName = "pruning-race"
	NetNameRace           NetName = "race"
)

// Board defines model for Board.
type Board struct {
	O CheckerLayout `json:"o"`
	X CheckerLayout `json:"x"`
}

// CheckerLayout defines model for CheckerLayout.
type CheckerLayout struct {
	P1  int `json:"1,omitempty"`
	P2  int `json:"2,omitempty"`
	P3  int `json:"3,omitempty"`
	P4  int `json:"4,omitempty"`
	P5  int `json:"5,omitempty"`
	P6  int `json:"6,omitempty"`
	P7  int `json:"7,omitempty"`
	P8  int `json:"8,omitempty"`
	P9  int `json:"9,omitempty"`
	P10 int `json:"10,omitempty"`
	P11 int `json:"11,omitempty"`
	P12 int `json:"12,omitempty"`
	P13 int `json:"13,omitempty"`
	P14 int `json:"14,omitempty"`
	P15 int `json:"15,omitempty"`
	P16 int `json:"16,omitempty"`
	P17 int `json:"17,omitempty"`
	P18 int `json:"18,omitempty"`
	P19 int `json:"19,omitempty"`
	P20 int `json:"20,omitempty"`
	P21 int `json:"21,omitempty"`
	P22 int `json:"22,omitempty"`
	P23 int `json:"23,omitempty"`
	P24 int `json:"24,omitempty"`
	Bar int `json:"bar,omitempty"`
}

// Error defines model for Error.
type Error struct {
	Message string `json:"message"`
}

// EvalArgs defines model for EvalArgs.
type EvalArgs struct {
	// Evaluated first; inputs are then evaluated incrementally from it
	Base   *[]float32 `json:"base,omitempty"`
	Inputs []float32  `json:"inputs"`
	Net    NetName    `json:"net"`
}

// EvalResult defines model for EvalResult.
type EvalResult struct {
	Incremental bool      `json:"incremental"`
	Outputs     []float32 `json:"outputs"`
}

// Info defines model for Info.
type Info struct {
	Bearoff string `json:"bearoff"`
	Cache   struct {
		Hits    int `json:"hits"`
		Lookups int `json:"lookups"`
	} `json:"cache"`
	Nets []NetInfo `json:"nets"`
	Simd bool      `json:"simd"`
}

// NetInfo defines model for NetInfo.
type NetInfo struct {
	Hidden  int    `json:"hidden"`
	Inputs  int    `json:"inputs"`
	Name    string `json:"name"`
	Outputs int    `json:"outputs"`
	Trained bool   `json:"trained"`
}

// NetName defines model for NetName.
type NetName string

// Player defines model for Player.
type Player string

// Probability defines model for Probability.
type Probability struct {
	Lose   float32 `json:"lose"`
	LoseBG float32 `json:"loseBG"`
	LoseG  float32 `json:"loseG"`
	Win    float32 `json:"win"`
	WinBG  float32 `json:"winBG"`
	WinG   float32 `json:"winG"`
}

// RaceArgs defines model for RaceArgs.
type RaceArgs struct {
	Board  Board   `json:"board"`
	Player *Player `json:"player,omitempty"`

	// One-sided rollouts per side, defaults to the server setting
	Trials *int `json:"trials,omitempty"`
}

// RaceResult defines model for RaceResult.
type RaceResult struct {
	// Cubeless money equity
	Eq          float32     `json:"eq"`
	O           SideStats   `json:"o"`
	Probability Probability `json:"probability"`
	Trials      int         `json:"trials"`
	X           SideStats   `json:"x"`
}

// SideStats defines model for SideStats.
type SideStats struct {
	// Effective pip count
	Epc  float32 `json:"epc"`
	Pips int     `json:"pips"`

	// Expected number of rolls to bear off
	Rolls   float32 `json:"rolls"`
	Wastage float32 `json:"wastage"`
}

// PostEvaluateJSONRequestBody defines body for PostEvaluate for application/json ContentType.
type PostEvaluateJSONRequestBody = EvalArgs

// PostRaceprobsJSONRequestBody defines body for PostRaceprobs for application/json ContentType.
type PostRaceprobsJSONRequestBody = RaceArgs

// PostRaceprobsBatchJSONRequestBody defines body for PostRaceprobsBatch for application/json ContentType.
type PostRaceprobsBatchJSONRequestBody = []RaceArgs

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Evaluate an encoded position with one of the neural nets
	// (POST /evaluate)
	PostEvaluate(ctx echo.Context) error
	// Describe the loaded nets and bearoff database
	// (GET /info)
	GetInfo(ctx echo.Context) error
	// Estimate race probabilities by one-sided rollouts
	// (POST /raceprobs)
	PostRaceprobs(ctx echo.Context) error
	// Estimate several races concurrently
	// (POST /raceprobs/batch)
	PostRaceprobsBatch(ctx echo.Context) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// PostEvaluate converts echo context to params.
func (w *ServerInterfaceWrapper) PostEvaluate(ctx echo.Context) error {
	return w.Handler.PostEvaluate(ctx)
}

// GetInfo converts echo context to params.
func (w *ServerInterfaceWrapper) GetInfo(ctx echo.Context) error {
	return w.Handler.GetInfo(ctx)
}

// PostRaceprobs converts echo context to params.
func (w *ServerInterfaceWrapper) PostRaceprobs(ctx echo.Context) error {
	return w.Handler.PostRaceprobs(ctx)
}

// PostRaceprobsBatch converts echo context to params.
func (w *ServerInterfaceWrapper) PostRaceprobsBatch(ctx echo.Context) error {
	return w.Handler.PostRaceprobsBatch(ctx)
}

// EchoRouter is implemented by both *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers the handlers, and prepends
// baseURL to the paths, so that the paths can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.POST(baseURL+"/evaluate", wrapper.PostEvaluate)
	router.GET(baseURL+"/info", wrapper.GetInfo)
	router.POST(baseURL+"/raceprobs", wrapper.PostRaceprobs)
	router.POST(baseURL+"/raceprobs/batch", wrapper.PostRaceprobsBatch)
}

// Document returns the raw OpenAPI document.
func Document() []byte {
	return document
}

// GetSwagger returns the parsed OpenAPI document, e.g. for request
// validation.
func GetSwagger() (*openapi3.T, error) {
	swagger, err := openapi3.NewLoader().LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("error loading OpenAPI document: %w", err)
	}
	return swagger, nil
}
