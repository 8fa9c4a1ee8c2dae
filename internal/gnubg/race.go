package gnubg

/* average number of pips per roll, (2*3+3*4+4*5+4*6+6*7+5*8+4*9+2*10+2*11+12+16+20+24)/36 */
const _AVG_PIPS_PER_ROLL float32 = 294.0 / 36.0

type _RaceResult struct {
	arOutput [_NUM_OUTPUTS]float32
	arMu     [2]float32
	anPips   [2]int
	arEPC    [2]float32
	arWaste  [2]float32
	rEquity  float32
}

func pipCount(anBoard *[25]int) int {
	n := 0
	for i := 0; i < 25; i++ {
		n += anBoard[i] * (i + 1)
	}
	return n
}

// evalRace estimates a race with nTrials one-sided rollouts per side,
// consulting the race cache first.
func evalRace(pbc bearoffProvider, pc *_EvalCache, anBoard _TanBoard, nTrials int, pr *_RaceResult) error {
	var ec _CacheNodeDetail
	var ar [_CACHE_VALUES]float32

	ec.key.fromBoard(anBoard)
	ec.nEvalContext = nTrials

	hit, l := cacheLookup(pc, &ec, &ar)
	if hit {
		copy(pr.arOutput[:], ar[:_NUM_OUTPUTS])
		copy(pr.arMu[:], ar[_NUM_OUTPUTS:])
		logDebugf("race cache hit (slot %d)", l)
	} else {
		if err := raceProbs(newOSRContext(pbc), anBoard, nTrials, &pr.arOutput, &pr.arMu); err != nil {
			return err
		}
		copy(ec.ar[:], pr.arOutput[:])
		copy(ec.ar[_NUM_OUTPUTS:], pr.arMu[:])
		cacheAdd(pc, &ec, l)
	}

	for i := 0; i < 2; i++ {
		pr.anPips[i] = pipCount(&anBoard[i])
		pr.arEPC[i] = pr.arMu[i] * _AVG_PIPS_PER_ROLL
		pr.arWaste[i] = pr.arEPC[i] - float32(pr.anPips[i])
	}
	pr.rEquity = utilityME(&pr.arOutput)

	return nil
}
