package gnubg

import (
	"errors"
	"fmt"
	"io/fs"
)

const _NUM_OUTPUTS = 5

const _OUTPUT_WIN = 0
const _OUTPUT_WINGAMMON = 1
const _OUTPUT_WINBACKGAMMON = 2
const _OUTPUT_LOSEGAMMON = 3
const _OUTPUT_LOSEBACKGAMMON = 4

/* Race cache size is 2^SIZE entries */
const _CACHE_SIZE_DEFAULT = 16

const (
	_WEIGHTS_FILE_BINARY = "gnubg.wd"
	_WEIGHTS_FILE_TEXT   = "gnubg.weights"
	_BEAROFF_FILE        = "gnubg_os0.bd"
)

/* board[1] is the side on roll; index 24 is the bar */
type _TanBoard [2][25]int

var nnw _NNWeights
var pbc1 *_BearOffContext
var cRace _EvalCache

func evalInitialise(dataDir fs.FS) error {
	if err := cacheCreate(&cRace, 0x1<<_CACHE_SIZE_DEFAULT); err != nil {
		return fmt.Errorf("error while creating cache: %w", err)
	}

	var err error

	if pbc1 == nil {
		pbc1, err = loadOneSided(dataDir)
		if err != nil {
			return err
		}
	}

	if dataDir == nil {
		logWarning("no data directory, neural nets are not loaded")
		return nil
	}

	for _, weightsFile := range []string{_WEIGHTS_FILE_BINARY, _WEIGHTS_FILE_TEXT} {
		pfWeights, err := dataDir.Open(weightsFile)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: error while opening weights file %v: %v", ErrIO, weightsFile, err)
		}
		err = weightsLoad(&nnw, pfWeights, weightsFile)
		pfWeights.Close()
		if err != nil {
			return fmt.Errorf("error while loading weights: %w", err)
		}
		return nil
	}

	logWarningf("no weights file (%v or %v), neural nets are not loaded", _WEIGHTS_FILE_BINARY, _WEIGHTS_FILE_TEXT)
	return nil
}

// loadOneSided opens the one-sided database used by the race estimator,
// falling back to the heuristic database when the file is missing or too
// small to cover a home board of 15 chequers.
func loadOneSided(dataDir fs.FS) (*_BearOffContext, error) {
	pbc, err := bearoffInit(dataDir, _BEAROFF_FILE, _BO_MUST_BE_ONE_SIDED)
	if err == nil && (pbc.nPoints < _HEURISTIC_P || pbc.nChequers < _HEURISTIC_C) {
		err = fmt.Errorf("%v covers %d points and %d chequers", _BEAROFF_FILE, pbc.nPoints, pbc.nChequers)
		bearoffClose(pbc)
	}
	if err == nil {
		return pbc, nil
	}

	logWarningf("creating a heuristic bearoff database as a fallback, reason: %v", err)
	pbc, err = bearoffInit(dataDir, "", _BO_HEURISTIC)
	if err != nil {
		return nil, fmt.Errorf("unable to create any type of bearoff database: %w", err)
	}
	return pbc, nil
}

func evalShutdown() {
	/* close bearoff databases */
	bearoffClose(pbc1)
	pbc1 = nil

	/* destroy neural nets */
	weightsDestroy(&nnw)

	/* destroy cache */
	cacheDestroy(&cRace)
}

/*
 * UtilityME for money play: the cubeless money equity of a probability
 * vector.
 */
func utilityME(ar *[_NUM_OUTPUTS]float32) float32 {
	return ar[_OUTPUT_WIN]*2.0 - 1.0 + (ar[_OUTPUT_WINGAMMON] - ar[_OUTPUT_LOSEGAMMON]) + (ar[_OUTPUT_WINBACKGAMMON] - ar[_OUTPUT_LOSEBACKGAMMON])
}
