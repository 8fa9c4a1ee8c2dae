package gnubg

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initWithWeights(t *testing.T, filename string, binary bool) {
	t.Helper()
	var b bytes.Buffer
	if binary {
		require.NoError(t, weightsSaveBinary(makeWeights(t, 4), &b))
	} else {
		require.NoError(t, weightsSave(makeWeights(t, 4), &b))
	}
	require.NoError(t, Init(fstest.MapFS{filename: {Data: b.Bytes()}}))
	t.Cleanup(Destroy)
}

func TestInit(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		binary   bool
	}{
		{"binary weights", _WEIGHTS_FILE_BINARY, true},
		{"text weights", _WEIGHTS_FILE_TEXT, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initWithWeights(t, tt.filename, tt.binary)

			info := GetInfo()
			require.Len(t, info.Nets, int(_N_CLASSES))
			assert.Equal(t, "contact", info.Nets[0].Name)
			assert.Equal(t, 250, info.Nets[0].Inputs)
			assert.Equal(t, 214, info.Nets[1].Inputs)
			assert.Equal(t, 5, info.Nets[5].Outputs)
			assert.Contains(t, info.Bearoff, "heuristic")
			assert.Equal(t, SIMD(), info.SIMD)
		})
	}
}

func TestInit_corruptWeights(t *testing.T) {
	err := Init(fstest.MapFS{_WEIGHTS_FILE_TEXT: {Data: []byte("GNU Backgammon 1.00\n250 4 5 0 0.1 1\n1 2 3\n")}})
	defer Destroy()
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestInit_noDataDir(t *testing.T) {
	require.NoError(t, Init(nil))
	defer Destroy()

	_, err := Evaluate(NetRace, make([]float32, 214), nil)
	assert.ErrorIs(t, err, ErrNotLoaded)

	r, err := RaceProbs(TanBoard{{1}, {1}}, 36)
	require.NoError(t, err)
	assert.Equal(t, float32(1), r.Win)
}

func TestEvaluate(t *testing.T) {
	initWithWeights(t, _WEIGHTS_FILE_BINARY, true)

	base := makeInputs(_NUM_INPUTS, 0)
	want, err := Evaluate(NetContact, base, nil)
	require.NoError(t, err)
	require.Len(t, want, _NUM_OUTPUTS)
	for _, r := range want {
		assert.True(t, r > 0 && r < 1)
	}

	state := NewEvalState(true)
	assert.False(t, state.Incremental())
	got, err := Evaluate(NetContact, base, state)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-5)
	assert.True(t, state.Incremental())

	next := makeInputs(_NUM_INPUTS, 3)
	want, err = Evaluate(NetContact, next, NewEvalState(false))
	require.NoError(t, err)
	got, err = Evaluate(NetContact, next, state)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-5)

	_, err = Evaluate(NetRace, base, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Evaluate(NetClass(42), base, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRaceProbs(t *testing.T) {
	require.NoError(t, Init(nil))
	defer Destroy()

	tests := []struct {
		name    string
		board   TanBoard
		trials  int
		want    RaceResult
		wantErr error
	}{
		{
			name:   "should win a one chequer race",
			board:  TanBoard{{1}, {1}},
			trials: DefaultTrials,
			want: RaceResult{
				Win:     1,
				Equity:  1,
				Mu:      [2]float32{1, 1},
				Pips:    [2]int{1, 1},
				EPC:     [2]float32{294.0 / 36.0, 294.0 / 36.0},
				Wastage: [2]float32{294.0/36.0 - 1, 294.0/36.0 - 1},
			},
		},
		{
			name:    "should reject zero trials",
			board:   TanBoard{{1}, {1}},
			trials:  0,
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "should reject sixteen chequers",
			board:   TanBoard{{15, 1}, {1}},
			trials:  36,
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "should reject negative counts",
			board:   TanBoard{{1}, {0, -1}},
			trials:  36,
			wantErr: ErrInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RaceProbs(tt.board, tt.trials)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Win, got.Win, 1e-6)
			assert.InDelta(t, tt.want.Equity, got.Equity, 1e-6)
			assert.InDeltaSlice(t, tt.want.Mu[:], got.Mu[:], 1e-6)
			assert.Equal(t, tt.want.Pips, got.Pips)
			assert.InDeltaSlice(t, tt.want.EPC[:], got.EPC[:], 1e-4)
			assert.InDeltaSlice(t, tt.want.Wastage[:], got.Wastage[:], 1e-4)
		})
	}
}

func TestRaceProbs_notInitialised(t *testing.T) {
	Destroy()
	_, err := RaceProbs(TanBoard{{1}, {1}}, 36)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestConvertWeights(t *testing.T) {
	var text bytes.Buffer
	pw := makeWeights(t, 3)
	require.NoError(t, weightsSave(pw, &text))

	var bin, back bytes.Buffer
	require.NoError(t, ConvertWeights(bytes.NewReader(text.Bytes()), &bin, true))
	require.NoError(t, ConvertWeights(&bin, &back, false))
	assert.Equal(t, text.String(), back.String())

	assert.ErrorIs(t, ConvertWeights(bytes.NewReader(nil), &bin, true), ErrTruncatedData)
}

func TestParseNetClass(t *testing.T) {
	c, err := ParseNetClass("crashed")
	require.NoError(t, err)
	assert.Equal(t, NetCrashed, c)
	assert.Equal(t, "crashed", c.String())

	_, err = ParseNetClass("nope")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
