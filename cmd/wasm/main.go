//go:build js && wasm

package main

import (
	"bgeval/internal/api"
	"bgeval/internal/gnubg"
	"bgeval/internal/openapi"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"syscall/js"
)

//go:embed data
var data embed.FS

func main() {
	c := make(chan struct{}, 0)

	// root embedded fs to data/
	dataDir, err := fs.Sub(data, "data")
	if err != nil {
		panic(err)
	}

	if err := gnubg.Init(dataDir); err != nil {
		panic(err)
	}

	println("WASM Go Initialized")
	// register functions
	{
		js.Global().Set("wasm_race_probs", js.FuncOf(raceProbs))
		js.Global().Set("wasm_evaluate", js.FuncOf(evaluate))
	}
	<-c
}

func raceProbs(this js.Value, input []js.Value) interface{} {
	var args openapi.RaceArgs

	if err := json.Unmarshal([]byte(input[0].String()), &args); err != nil {
		return jsError(err)
	}

	res, err := api.RaceProbs(args, gnubg.DefaultTrials)

	if err != nil {
		return jsError(err)
	}

	return jsResult(res)
}

func evaluate(this js.Value, input []js.Value) interface{} {
	var args openapi.EvalArgs

	if err := json.Unmarshal([]byte(input[0].String()), &args); err != nil {
		return jsError(err)
	}

	res, err := api.Evaluate(args)

	if err != nil {
		return jsError(err)
	}

	return jsResult(res)
}

func jsResult(v interface{}) interface{} {
	bytes, err := json.Marshal(v)

	if err != nil {
		return jsError(err)
	}

	return js.ValueOf(string(bytes))
}

func jsError(err error) interface{} {
	msg, _ := json.Marshal(err.Error())
	return js.ValueOf(fmt.Sprintf("{\"error\": %s}", msg))
}
