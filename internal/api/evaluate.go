package api

import (
	"bgeval/internal/gnubg"
	"bgeval/internal/openapi"
	"fmt"
)

// Evaluate runs a net on args.Inputs. With args.Base set the base is
// evaluated first and the inputs are evaluated incrementally from it.
func Evaluate(args openapi.EvalArgs) (openapi.EvalResult, error) {
	class, err := gnubg.ParseNetClass(string(args.Net))

	if err != nil {
		return openapi.EvalResult{}, err
	}

	var state *gnubg.EvalState

	if args.Base != nil {
		state = gnubg.NewEvalState(true)
		if _, err := gnubg.Evaluate(class, *args.Base, state); err != nil {
			return openapi.EvalResult{}, fmt.Errorf("error evaluating base: %w", err)
		}
	}

	var incremental = state.Incremental()

	outputs, err := gnubg.Evaluate(class, args.Inputs, state)

	if err != nil {
		return openapi.EvalResult{}, fmt.Errorf("error in gnubg.Evaluate(): %w", err)
	}

	return openapi.EvalResult{
		Outputs:     outputs,
		Incremental: incremental,
	}, nil
}

func GetInfo() openapi.Info {
	info := gnubg.GetInfo()

	var ret = openapi.Info{
		Bearoff: info.Bearoff,
		Nets:    make([]openapi.NetInfo, 0, len(info.Nets)),
		Simd:    info.SIMD,
	}
	ret.Cache.Lookups = info.CacheLookups
	ret.Cache.Hits = info.CacheHits

	for _, n := range info.Nets {
		ret.Nets = append(ret.Nets, openapi.NetInfo{
			Name:    n.Name,
			Inputs:  n.Inputs,
			Hidden:  n.Hidden,
			Outputs: n.Outputs,
			Trained: n.Trained,
		})
	}

	return ret
}
