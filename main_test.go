package main

import (
	"bgeval/internal/gnubg"
	"bgeval/internal/openapi"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var once sync.Once

func setup() {
	var b bytes.Buffer
	b.WriteString("GNU Backgammon 1.00\n")
	for _, cInput := range []int{250, 214, 250, 200, 200, 200} {
		fmt.Fprintf(&b, "%d 2 5 1 0.1 1\n", cInput)
		for i := 0; i < cInput*2+5*2+2+5; i++ {
			fmt.Fprintf(&b, "%v\n", float32(i%5-2)/50)
		}
	}
	if err := gnubg.Init(fstest.MapFS{"gnubg.weights": {Data: b.Bytes()}}); err != nil {
		panic(err)
	}
}

func do(t *testing.T, method string, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	once.Do(setup)

	e, err := newEcho(36)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPostRaceprobs(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		check    func(t *testing.T, body []byte)
	}{
		{
			name:     "should estimate a race",
			body:     `{"board": {"x": {"1": 1}, "o": {"1": 1}}}`,
			wantCode: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var res openapi.RaceResult
				require.NoError(t, json.Unmarshal(body, &res))
				assert.Equal(t, float32(1), res.Probability.Win)
				assert.Equal(t, float32(1), res.Eq)
				assert.Equal(t, 36, res.Trials)
				assert.Equal(t, 1, res.X.Pips)
			},
		},
		{
			name:     "should use requested trials",
			body:     `{"board": {"x": {"2": 2}, "o": {"3": 1}}, "player": "o", "trials": 72}`,
			wantCode: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var res openapi.RaceResult
				require.NoError(t, json.Unmarshal(body, &res))
				assert.Equal(t, 72, res.Trials)
				assert.Equal(t, 4, res.X.Pips)
				assert.Equal(t, 3, res.O.Pips)
			},
		},
		{
			name:     "should reject zero trials",
			body:     `{"board": {"x": {"1": 1}, "o": {"1": 1}}, "trials": 0}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "should reject unknown point",
			body:     `{"board": {"x": {"25": 1}, "o": {"1": 1}}}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "should reject unknown player",
			body:     `{"board": {"x": {"1": 1}, "o": {"1": 1}}, "player": "z"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "should reject sixteen chequers",
			body:     `{"board": {"x": {"1": 15, "2": 1}, "o": {"1": 1}}}`,
			wantCode: http.StatusBadRequest,
			check: func(t *testing.T, body []byte) {
				var res openapi.Error
				require.NoError(t, json.Unmarshal(body, &res))
				assert.Contains(t, res.Message, gnubg.ErrInvalidArgument.Error())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, http.MethodPost, "/api/v1/raceprobs", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.check != nil {
				tt.check(t, rec.Body.Bytes())
			}
		})
	}
}

func TestPostRaceprobsBatch(t *testing.T) {
	rec := do(t, http.MethodPost, "/api/v1/raceprobs/batch",
		`[{"board": {"x": {"1": 1}, "o": {"1": 1}}}, {"board": {"x": {"1": 1}, "o": {"1": 15}}, "player": "o"}]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res []openapi.RaceResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res, 2)
	assert.Equal(t, float32(1), res[0].Probability.Win)
	assert.Equal(t, float32(0), res[1].Probability.Win)
	assert.Equal(t, 15, res[1].O.Pips)

	rec = do(t, http.MethodPost, "/api/v1/raceprobs/batch", `[{"board": {"x": {"1": 16}, "o": {}}}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostEvaluate(t *testing.T) {
	vector := func(n int) string {
		ar := make([]string, n)
		for i := range ar {
			ar[i] = fmt.Sprint(i % 2)
		}
		return "[" + strings.Join(ar, ",") + "]"
	}

	rec := do(t, http.MethodPost, "/api/v1/evaluate", `{"net": "race", "inputs": `+vector(214)+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var full openapi.EvalResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &full))
	assert.Len(t, full.Outputs, 5)
	assert.False(t, full.Incremental)

	rec = do(t, http.MethodPost, "/api/v1/evaluate", `{"net": "race", "inputs": `+vector(214)+`, "base": `+vector(214)+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var incremental openapi.EvalResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &incremental))
	assert.True(t, incremental.Incremental)
	assert.InDeltaSlice(t, full.Outputs, incremental.Outputs, 1e-5)

	rec = do(t, http.MethodPost, "/api/v1/evaluate", `{"net": "contact", "inputs": `+vector(214)+`}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, http.MethodPost, "/api/v1/evaluate", `{"net": "bogus", "inputs": [1]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetInfo(t *testing.T) {
	rec := do(t, http.MethodGet, "/api/v1/info", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res openapi.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Nets, 6)
	assert.Equal(t, "contact", res.Nets[0].Name)
}

func TestSwagger(t *testing.T) {
	rec := do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/swagger/", rec.Header().Get(echo.HeaderLocation))

	rec = do(t, http.MethodGet, "/swagger/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_httpError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid argument", fmt.Errorf("x: %w", gnubg.ErrInvalidArgument), http.StatusBadRequest},
		{"dimension mismatch", fmt.Errorf("x: %w", gnubg.ErrDimensionMismatch), http.StatusBadRequest},
		{"not loaded", gnubg.ErrNotLoaded, http.StatusBadRequest},
		{"anything else", gnubg.ErrIO, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := httpError(tt.err)
			var he *echo.HTTPError
			if tt.wantCode == 0 {
				assert.False(t, errors.As(err, &he))
				assert.Equal(t, tt.err, err)
				return
			}
			require.True(t, errors.As(err, &he))
			assert.Equal(t, tt.wantCode, he.Code)
		})
	}
}

func Test_parseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Lvl
		wantErr bool
	}{
		{"debug", log.DEBUG, false},
		{"WARN", log.WARN, false},
		{"off", log.OFF, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_readEnv(t *testing.T) {
	t.Setenv("BGEVAL_TEST_VAR", "42")
	assert.Equal(t, "42", readEnv("BGEVAL_TEST_VAR", "7"))
	assert.Equal(t, "7", readEnv("BGEVAL_TEST_UNSET", "7"))
}
