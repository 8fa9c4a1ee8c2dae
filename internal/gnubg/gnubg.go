package gnubg

import (
	"fmt"
	"io"
	"io/fs"
)

// DefaultTrials is the number of one-sided rollouts per side used when the
// caller does not choose one.
const DefaultTrials = 5760

// TanBoard holds the chequers of both sides, each from its own point of
// view: index 0 is the one point, index 24 the bar. TanBoard[1] is on roll.
type TanBoard _TanBoard

type NetClass _NNClass

const (
	NetContact        = NetClass(_CLASS_CONTACT)
	NetRace           = NetClass(_CLASS_RACE)
	NetCrashed        = NetClass(_CLASS_CRASHED)
	NetPruningContact = NetClass(_CLASS_PRUNING_CONTACT)
	NetPruningCrashed = NetClass(_CLASS_PRUNING_CRASHED)
	NetPruningRace    = NetClass(_CLASS_PRUNING_RACE)
)

func ParseNetClass(s string) (NetClass, error) {
	c, err := parseNNClass(s)
	return NetClass(c), err
}

func (c NetClass) String() string {
	return _NNClass(c).String()
}

// EvalState carries the saved base of incremental evaluation. A state
// belongs to one search context and must not be shared between goroutines.
type EvalState _NNState

// NewEvalState returns a state that evaluates in full every time, or, when
// incremental, saves the first evaluation as base for the following ones.
func NewEvalState(incremental bool) *EvalState {
	if incremental {
		return &EvalState{state: _NNSTATE_INCREMENTAL}
	}
	return &EvalState{state: _NNSTATE_NONE}
}

// Incremental reports whether the next evaluation starts from a saved base.
func (s *EvalState) Incremental() bool {
	return s != nil && s.state == _NNSTATE_DONE
}

type RaceResult struct {
	Win            float32
	WinGammon      float32
	WinBackgammon  float32
	LoseGammon     float32
	LoseBackgammon float32
	Equity         float32
	// per side, index 1 is on roll
	Mu      [2]float32
	Pips    [2]int
	EPC     [2]float32
	Wastage [2]float32
}

type NetInfo struct {
	Name    string
	Inputs  int
	Hidden  int
	Outputs int
	Trained bool
}

type Info struct {
	Nets         []NetInfo
	SIMD         bool
	Bearoff      string
	CacheLookups int
	CacheHits    int
}

func Init(dataDir fs.FS) error {
	if err := evalInitialise(dataDir); err != nil {
		return fmt.Errorf("error in evalInitialise(): %w", err)
	}

	return nil
}

func Destroy() {
	evalShutdown()
}

// Evaluate runs the net of the given class on an encoded position. state
// may be nil for a plain full evaluation.
func Evaluate(class NetClass, inputs []float32, state *EvalState) ([]float32, error) {
	pnn := nnw.net(_NNClass(class))
	if pnn == nil {
		return nil, fmt.Errorf("%w: unknown net class %d", ErrInvalidArgument, int(class))
	}
	if !pnn.loaded() {
		return nil, fmt.Errorf("%v: %w", class, ErrNotLoaded)
	}

	arOutput := make([]float32, pnn.cOutput)
	if err := neuralNetEvaluate(pnn, inputs, arOutput, (*_NNState)(state)); err != nil {
		return nil, fmt.Errorf("%v: %w", class, err)
	}
	return arOutput, nil
}

// RaceProbs estimates the outcome of a race by one-sided rollouts. Results
// are reproducible: the dice generator is reseeded on every call.
func RaceProbs(board TanBoard, trials int) (RaceResult, error) {
	if trials < 1 {
		return RaceResult{}, fmt.Errorf("%w: %d trials", ErrInvalidArgument, trials)
	}
	if err := checkRaceBoard(_TanBoard(board)); err != nil {
		return RaceResult{}, err
	}
	if pbc1 == nil {
		return RaceResult{}, fmt.Errorf("%w: no bearoff database, call Init first", ErrInvalidArgument)
	}

	var r _RaceResult
	if err := evalRace(pbc1, &cRace, _TanBoard(board), trials, &r); err != nil {
		return RaceResult{}, err
	}

	return RaceResult{
		Win:            r.arOutput[_OUTPUT_WIN],
		WinGammon:      r.arOutput[_OUTPUT_WINGAMMON],
		WinBackgammon:  r.arOutput[_OUTPUT_WINBACKGAMMON],
		LoseGammon:     r.arOutput[_OUTPUT_LOSEGAMMON],
		LoseBackgammon: r.arOutput[_OUTPUT_LOSEBACKGAMMON],
		Equity:         r.rEquity,
		Mu:             r.arMu,
		Pips:           r.anPips,
		EPC:            r.arEPC,
		Wastage:        r.arWaste,
	}, nil
}

func checkRaceBoard(anBoard _TanBoard) error {
	for side := 0; side < 2; side++ {
		n := 0
		for i, c := range anBoard[side] {
			if c < 0 || c > 15 {
				return fmt.Errorf("%w: side %d has %d chequers on point %d", ErrInvalidArgument, side, c, i+1)
			}
			n += c
		}
		if n > 15 {
			return fmt.Errorf("%w: side %d has %d chequers", ErrInvalidArgument, side, n)
		}
	}
	return nil
}

// ConvertWeights reads a weights file in either format and writes it in
// binary form when toBinary is set, in text form otherwise.
func ConvertWeights(r io.Reader, w io.Writer, toBinary bool) error {
	var pw _NNWeights

	if err := weightsLoad(&pw, r, "input"); err != nil {
		return err
	}
	defer weightsDestroy(&pw)

	if toBinary {
		return weightsSaveBinary(&pw, w)
	}
	return weightsSave(&pw, w)
}

func GetInfo() Info {
	info := Info{SIMD: SIMD()}

	for c := _NNClass(0); c < _N_CLASSES; c++ {
		pnn := nnw.net(c)
		if !pnn.loaded() {
			continue
		}
		info.Nets = append(info.Nets, NetInfo{
			Name:    c.String(),
			Inputs:  pnn.cInput,
			Hidden:  pnn.cHidden,
			Outputs: pnn.cOutput,
			Trained: pnn.nTrained != 0,
		})
	}

	if pbc1 != nil {
		info.Bearoff = fmt.Sprintf("%v %v (%d points, %d chequers)", pbc1.bt, pbc1.szFilename, pbc1.nPoints, pbc1.nChequers)
	}

	info.CacheLookups, info.CacheHits = cacheStats(&cRace)

	return info
}
