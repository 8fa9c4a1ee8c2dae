package api

import (
	"bgeval/internal/gnubg"
	"bgeval/internal/openapi"
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

func RaceProbs(args openapi.RaceArgs, defaultTrials int) (openapi.RaceResult, error) {
	var trials int = defaultTrials

	if args.Trials != nil {
		trials = *args.Trials
	}

	// board[1] is on roll
	var x, o = 1, 0

	if args.Player != nil && *args.Player == openapi.PlayerO {
		x, o = 0, 1
	}

	var board gnubg.TanBoard
	board[x] = layoutToGNU(args.Board.X)
	board[o] = layoutToGNU(args.Board.O)

	r, err := gnubg.RaceProbs(board, trials)

	if err != nil {
		return openapi.RaceResult{}, fmt.Errorf("error in gnubg.RaceProbs(): %w", err)
	}

	return openapi.RaceResult{
		Probability: openapi.Probability{
			Win:    fformat(r.Win),
			WinG:   fformat(r.WinGammon),
			WinBG:  fformat(r.WinBackgammon),
			Lose:   fformat(1 - r.Win),
			LoseG:  fformat(r.LoseGammon),
			LoseBG: fformat(r.LoseBackgammon),
		},
		Eq:     fformat(r.Equity),
		Trials: trials,
		X:      sideStats(r, x),
		O:      sideStats(r, o),
	}, nil
}

// RaceProbsBatch runs the estimates concurrently, at most one per CPU. The
// results are in request order.
func RaceProbsBatch(ctx context.Context, args []openapi.RaceArgs, defaultTrials int) ([]openapi.RaceResult, error) {
	var ret = make([]openapi.RaceResult, len(args))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range args {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := RaceProbs(args[i], defaultTrials)
			if err != nil {
				return fmt.Errorf("race %d: %w", i, err)
			}
			ret[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ret, nil
}

func sideStats(r gnubg.RaceResult, side int) openapi.SideStats {
	return openapi.SideStats{
		Pips:    r.Pips[side],
		Rolls:   fformat(r.Mu[side]),
		Epc:     fformat(r.EPC[side]),
		Wastage: fformat(r.Wastage[side]),
	}
}

func layoutToGNU(layout openapi.CheckerLayout) [25]int {
	return [25]int{
		layout.P1,
		layout.P2,
		layout.P3,
		layout.P4,
		layout.P5,
		layout.P6,
		layout.P7,
		layout.P8,
		layout.P9,
		layout.P10,
		layout.P11,
		layout.P12,
		layout.P13,
		layout.P14,
		layout.P15,
		layout.P16,
		layout.P17,
		layout.P18,
		layout.P19,
		layout.P20,
		layout.P21,
		layout.P22,
		layout.P23,
		layout.P24,
		layout.Bar,
	}
}

// LayoutFromGNU is the inverse of layoutToGNU: index 0 is the one point,
// index 24 the bar.
func LayoutFromGNU(an [25]int) openapi.CheckerLayout {
	return openapi.CheckerLayout{
		P1: an[0], P2: an[1], P3: an[2], P4: an[3], P5: an[4], P6: an[5],
		P7: an[6], P8: an[7], P9: an[8], P10: an[9], P11: an[10], P12: an[11],
		P13: an[12], P14: an[13], P15: an[14], P16: an[15], P17: an[16], P18: an[17],
		P19: an[18], P20: an[19], P21: an[20], P22: an[21], P23: an[22], P24: an[23],
		Bar: an[24],
	}
}

func fformat(f float32) float32 {
	return float32(math.Round(float64(f*1000))) / 1000
}
