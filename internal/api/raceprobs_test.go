package api

import (
	"bgeval/internal/gnubg"
	"bgeval/internal/openapi"
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var once sync.Once

// weightsFile builds a small text weights file with every net present.
func weightsFile() []byte {
	var b bytes.Buffer
	b.WriteString("GNU Backgammon 1.00\n")
	for _, cInput := range []int{250, 214, 250, 200, 200, 200} {
		const cHidden, cOutput = 3, 5
		fmt.Fprintf(&b, "%d %d %d 1 0.1 1\n", cInput, cHidden, cOutput)
		n := cInput*cHidden + cOutput*cHidden + cHidden + cOutput
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "%v\n", float32(i%7-3)/100)
		}
	}
	return b.Bytes()
}

func setup() {
	if err := gnubg.Init(fstest.MapFS{"gnubg.weights": {Data: weightsFile()}}); err != nil {
		panic(err)
	}
}

func player(p openapi.Player) *openapi.Player {
	return &p
}

func trials(n int) *int {
	return &n
}

func TestRaceProbs(t *testing.T) {
	once.Do(setup)
	type args struct {
		args openapi.RaceArgs
	}
	tests := []struct {
		name    string
		args    args
		want    openapi.RaceResult
		wantErr bool
	}{
		{
			name: "should win a one chequer race on roll",
			args: args{openapi.RaceArgs{
				Board: openapi.Board{
					X: openapi.CheckerLayout{P1: 1},
					O: openapi.CheckerLayout{P1: 1},
				},
			}},
			want: openapi.RaceResult{
				Probability: openapi.Probability{Win: 1},
				Eq:          1,
				Trials:      gnubg.DefaultTrials,
				X:           openapi.SideStats{Pips: 1, Rolls: 1, Epc: 8.167, Wastage: 7.167},
				O:           openapi.SideStats{Pips: 1, Rolls: 1, Epc: 8.167, Wastage: 7.167},
			},
		},
		{
			name: "should lose when o is on roll with fifteen chequers home",
			args: args{openapi.RaceArgs{
				Board: openapi.Board{
					X: openapi.CheckerLayout{P1: 1},
					O: openapi.CheckerLayout{P1: 15},
				},
				Player: player(openapi.PlayerO),
				Trials: trials(36),
			}},
			want: openapi.RaceResult{
				Probability: openapi.Probability{Win: 0, Lose: 1},
				Eq:          -1,
				Trials:      36,
				X:           openapi.SideStats{Pips: 1, Rolls: 1, Epc: 8.167, Wastage: 7.167},
			},
		},
		{
			name: "should reject sixteen chequers",
			args: args{openapi.RaceArgs{
				Board: openapi.Board{
					X: openapi.CheckerLayout{P1: 15, P2: 1},
					O: openapi.CheckerLayout{P1: 1},
				},
			}},
			wantErr: true,
		},
		{
			name: "should reject zero trials",
			args: args{openapi.RaceArgs{
				Board: openapi.Board{
					X: openapi.CheckerLayout{P1: 1},
					O: openapi.CheckerLayout{P1: 1},
				},
				Trials: trials(0),
			}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RaceProbs(tt.args.args, gnubg.DefaultTrials)
			if (err != nil) != tt.wantErr {
				t.Errorf("RaceProbs() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				assert.ErrorIs(t, err, gnubg.ErrInvalidArgument)
				return
			}
			assert.Equal(t, tt.want.Probability, got.Probability)
			assert.Equal(t, tt.want.Eq, got.Eq)
			assert.Equal(t, tt.want.Trials, got.Trials)
			assert.Equal(t, tt.want.X, got.X)
			if tt.want.O.Pips != 0 {
				assert.Equal(t, tt.want.O, got.O)
			}
		})
	}
}

func TestRaceProbs_sides(t *testing.T) {
	once.Do(setup)

	board := openapi.Board{
		X: openapi.CheckerLayout{P2: 3, P5: 4, P9: 2},
		O: openapi.CheckerLayout{P1: 2, P4: 5, P11: 1},
	}

	asX, err := RaceProbs(openapi.RaceArgs{Board: board, Trials: trials(144)}, 0)
	require.NoError(t, err)
	asO, err := RaceProbs(openapi.RaceArgs{Board: board, Player: player(openapi.PlayerO), Trials: trials(144)}, 0)
	require.NoError(t, err)

	assert.Equal(t, 44, asX.X.Pips)
	assert.Equal(t, 33, asX.O.Pips)
	assert.Equal(t, asX.X.Pips, asO.X.Pips)
	assert.Equal(t, asX.O.Pips, asO.O.Pips)
	assert.InDelta(t, 1, asX.Probability.Win+asX.Probability.Lose, 1e-3)
	assert.Greater(t, asO.Probability.Win, asX.Probability.Win)
}

func TestRaceProbsBatch(t *testing.T) {
	once.Do(setup)

	args := []openapi.RaceArgs{
		{Board: openapi.Board{X: openapi.CheckerLayout{P1: 1}, O: openapi.CheckerLayout{P1: 1}}},
		{Board: openapi.Board{X: openapi.CheckerLayout{P1: 1}, O: openapi.CheckerLayout{P1: 15}}, Player: player(openapi.PlayerO)},
		{Board: openapi.Board{X: openapi.CheckerLayout{P3: 2}, O: openapi.CheckerLayout{P5: 2}}, Trials: trials(72)},
	}

	got, err := RaceProbsBatch(context.Background(), args, 36)
	require.NoError(t, err)
	require.Len(t, got, len(args))

	for i := range args {
		want, err := RaceProbs(args[i], 36)
		require.NoError(t, err)
		assert.Equal(t, want, got[i], "race %d", i)
	}
	assert.Equal(t, 72, got[2].Trials)

	args = append(args, openapi.RaceArgs{Board: openapi.Board{X: openapi.CheckerLayout{Bar: 16}}})
	_, err = RaceProbsBatch(context.Background(), args, 36)
	assert.ErrorIs(t, err, gnubg.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "race 3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RaceProbsBatch(ctx, args[:1], 36)
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_layoutToGNU(t *testing.T) {
	got := layoutToGNU(openapi.CheckerLayout{P1: 2, P6: 5, P24: 1, Bar: 3})
	var want [25]int
	want[0], want[5], want[23], want[24] = 2, 5, 1, 3
	assert.Equal(t, want, got)
	assert.Equal(t, openapi.CheckerLayout{P1: 2, P6: 5, P24: 1, Bar: 3}, LayoutFromGNU(got))
}

func Test_fformat(t *testing.T) {
	assert.Equal(t, float32(0.123), fformat(0.12345))
	assert.Equal(t, float32(-0.5), fformat(-0.49961))
	assert.Equal(t, float32(1), fformat(0.99999))
}
