package gnubg

import (
	"bgeval/internal/gnubg/math32"
	"bgeval/internal/gnubg/mt19937"
	"fmt"
)

const _MAX_PROBS = 32
const _MAX_GAMMON_PROBS = 15

// _OSRContext is the state of one race evaluation: the dice generator and
// the one-sided bearoff distributions. Contexts are not shared between
// goroutines.
type _OSRContext struct {
	mt  mt19937.MT
	pbc bearoffProvider
}

func newOSRContext(pbc bearoffProvider) *_OSRContext {
	return &_OSRContext{pbc: pbc}
}

func (ctx *_OSRContext) quasiRandomDice(iTurn int, iGame int, cGames int) [2]int {
	switch {
	case iTurn == 0 && cGames%36 == 0:
		return [2]int{(iGame % 6) + 1, ((iGame / 6) % 6) + 1}
	case iTurn == 1 && cGames%1296 == 0:
		return [2]int{((iGame / 36) % 6) + 1, ((iGame / 216) % 6) + 1}
	}
	d0 := int(ctx.mt.Uint32()%6) + 1
	d1 := int(ctx.mt.Uint32()%6) + 1
	return [2]int{d0, d1}
}

func (ctx *_OSRContext) getBearoffProbs(anBoard []int, aaProb *[32]int) error {
	if err := ctx.pbc.dist(anBoard, aaProb); err != nil {
		return fmt.Errorf("bearoff distribution: %w", err)
	}
	return nil
}

func isCrossOver(from int, to int) bool {
	return (from / 6) != (to / 6)
}

func findBestMoveOSR2(anBoard *[25]int, anDice [2]int, pnOut *int) {
	iused := 0

	ifar := 5 + anDice[0]
	inear := 5 + anDice[1]

	if anBoard[ifar] > 0 && anBoard[inear] > 0 {
		/* two chequers move exactly into the home quadrant */
		anBoard[ifar]--
		anBoard[inear]--
		anBoard[5] += 2
		*pnOut -= 2
		return
	}

	iboth := 5 + (anDice[0] + anDice[1])

	if anBoard[iboth] > 0 {
		/* one chequer move exactly into the home quadrant */
		anBoard[iboth]--
		anBoard[5]++
		*pnOut--
		return
	}

	/* loop through dice */
	for i := 0; i < 2 && *pnOut > 0; i++ {
		d := anDice[i]

		/* check for exact cross over */
		if anBoard[5+d] > 0 {
			anBoard[5+d]--
			anBoard[5]++
			*pnOut--
			iused++
			continue
		}

		/* find chequer furthest away */
		lc := 24
		for lc > 5 && anBoard[lc] == 0 {
			lc--
		}

		/* try to make cross over from the back */
		found := false
		for j := lc; j-d > 5; j-- {
			if anBoard[j] > 0 && isCrossOver(j, j-d) {
				anBoard[j]--
				anBoard[j-d]++
				iused++
				found = true
				break
			}
		}

		if !found {
			/* no move with cross-over was found; move chequer from the rear */
			for j := lc; j > 5; j-- {
				if anBoard[j] > 0 {
					anBoard[j]--
					anBoard[j-d]++
					iused++
					if j-d < 6 { /* we've moved inside home quadrant */
						*pnOut--
					}
					break
				}
			}
		}
	}

	if *pnOut == 0 && iused < 2 {
		/* die 2 still left, and all chequers inside home quadrant */
		d := anDice[1]

		if anBoard[d-1] > 0 {
			/* bear-off */
			anBoard[d-1]--
			return
		}

		/* try filling rearest empty space */
		for i := 0; i < 6-d; i++ {
			j := 5 - i
			if anBoard[j] > 0 && anBoard[j-d] == 0 {
				anBoard[j]--
				anBoard[j-d]++
				return
			}
		}

		/* move chequer from the rear */
		for i := 0; i < 6; i++ {
			j := 5 - i
			if anBoard[j] > 0 {
				anBoard[j]--
				if j >= d {
					anBoard[j-d]++
				}
				return
			}
		}
	}
}

func findBestMoveOSR4(anBoard *[25]int, nDice int, pnOut *int) {
	nd := 4

	/* check for exact bear-ins */
	for nd > 0 && *pnOut > 0 && anBoard[5+nDice] > 0 {
		anBoard[5+nDice]--
		anBoard[5]++
		nd--
		*pnOut--
	}

	if *pnOut > 0 && nd > 0 {
		first := true

		/* find rearest chequer */
		lc := 24
		for lc > 5 && anBoard[lc] == 0 {
			lc--
		}

		/* try to make cross over from the back */
		for i := lc; i > 5; i-- {
			if anBoard[i] == 0 {
				continue
			}
			if isCrossOver(i, i-nDice) && (first || i-nDice > 5) {
				for anBoard[i] > 0 && nd > 0 && *pnOut > 0 {
					anBoard[i]--
					anBoard[i-nDice]++
					if i-nDice < 6 { /* we move into homeland */
						*pnOut--
					}
					nd--
				}
				if *pnOut == 0 || nd == 0 {
					break
				}
				/* did we move all chequers from that point */
				first = anBoard[i] == 0
			}
		}

		/* move chequers from the rear, one point per pass */
		for *pnOut > 0 && nd > 0 {
			for i := lc; i > 5; i-- {
				if anBoard[i] == 0 {
					continue
				}
				for anBoard[i] > 0 && nd > 0 && *pnOut > 0 {
					anBoard[i]--
					anBoard[i-nDice]++
					if i-nDice < 6 {
						*pnOut--
					}
					nd--
				}
				break
			}
		}
	}

	if *pnOut > 0 {
		return
	}

	/* all chequers inside home quadrant */
	for nd > 0 {
		if anBoard[nDice-1] > 0 {
			/* perfect bear-off */
			anBoard[nDice-1]--
			nd--
			continue
		}

		if nd >= 2 && nDice <= 3 && anBoard[2*nDice-1] > 0 {
			/* bear double 1s, 2s, and 3s off, e.g., 4/2/0 */
			anBoard[2*nDice-1]--
			nd -= 2
			continue
		}

		if nd >= 3 && nDice <= 2 && anBoard[3*nDice-1] > 0 {
			/* bear double 1s off from 3 point (3/2/1/0) or
			 * double 2s off from 6 point (6/4/2/0) */
			anBoard[3*nDice-1]--
			nd -= 3
			continue
		}

		if nd >= 4 && nDice <= 1 && anBoard[4*nDice-1] > 0 {
			/* bear off double 1s: 4/3/2/1/0 */
			anBoard[4*nDice-1]--
			nd -= 4
		}

		any := false

		/* move chequers from rear */
		for i := 0; nd > 0 && i < 6; i++ {
			j := 5 - i
			for anBoard[j] > 0 && nd > 0 {
				any = true
				anBoard[j]--
				nd--
				if j >= nDice {
					anBoard[j-nDice]++
				}
			}
		}

		if !any {
			/* no more chequers left */
			nd = 0
		}
	}
}

func findBestMoveOSR(anBoard *[25]int, anDice [2]int, pnOut *int) {
	if anDice[0] != anDice[1] {
		findBestMoveOSR2(anBoard, anDice, pnOut)
	} else {
		findBestMoveOSR4(anBoard, anDice[0], pnOut)
	}
}

// osr plays one game until all chequers are in the home quadrant and
// returns the number of rolls used.
func (ctx *_OSRContext) osr(anBoard *[25]int, iGame int, nGames int, nOut int) int {
	iTurn := 0

	for nOut > 0 {
		anDice := ctx.quasiRandomDice(iTurn, iGame, nGames)

		if anDice[0] < anDice[1] {
			anDice[0], anDice[1] = anDice[1], anDice[0]
		}

		findBestMoveOSR(anBoard, anDice, &nOut)

		iTurn++
	}

	return iTurn
}

func (ctx *_OSRContext) rollOSR(nGames int, anBoard *[25]int, nOut int, arProbs []float32, arGammonProbs []float32) error {
	var an [25]int
	var anProb [32]int
	nMaxProbs := len(arProbs)
	nMaxGammonProbs := len(arGammonProbs)
	anCounts := make([]int, nMaxGammonProbs)

	for i := range arProbs {
		arProbs[i] = 0.0
	}

	/* perform rollouts */
	for iGame := 0; iGame < nGames; iGame++ {
		an = *anBoard

		n := ctx.osr(&an, iGame, nGames, nOut)

		/* number of chequers in home quadrant */
		m := 0
		for i := 0; i < 6; i++ {
			m += an[i]
		}

		if m == 15 {
			anCounts[imin(n+1, nMaxGammonProbs-1)]++
		} else {
			anCounts[imin(n, nMaxGammonProbs-1)]++
		}

		/* get prob. from bearoff1 */
		if err := ctx.getBearoffProbs(an[:], &anProb); err != nil {
			return err
		}

		for i := 0; i < 32; i++ {
			arProbs[imin(n+i, nMaxProbs-1)] += float32(anProb[i]) / 65535.0
		}
	}

	/* scale resulting probabilities */
	for i := range arProbs {
		arProbs[i] /= float32(nGames)
	}

	/* calculate gammon probs.
	 * (prob. of getting inside home quadrant in i rolls */
	for i := range arGammonProbs {
		arGammonProbs[i] = float32(anCounts[i]) / float32(nGames)
	}

	return nil
}

// osp fills the one-sided distributions for anBoard, by rollout when
// chequers are outside the home quadrant, and returns the chequers left.
func (ctx *_OSRContext) osp(anBoard *[25]int, nGames int, arProbs *[_MAX_PROBS]float32, arGammonProbs *[_MAX_GAMMON_PROBS]float32) (int, error) {
	var anProb [32]int
	nTotal, nOut := 0, 0

	for i := 0; i < 25; i++ {
		/* total number of chequers left */
		nTotal += anBoard[i]
		if i > 5 {
			nOut += anBoard[i]
		}
	}

	if nOut > 0 {
		/* chequers outside home: do one sided rollout */
		return nTotal, ctx.rollOSR(nGames, anBoard, nOut, arProbs[:], arGammonProbs[:])
	}

	/* chequers inside home: no gammon possible */
	*arGammonProbs = [_MAX_GAMMON_PROBS]float32{}
	if nTotal == 15 {
		arGammonProbs[1] = 1.0
	} else {
		arGammonProbs[0] = 1.0
	}

	*arProbs = [_MAX_PROBS]float32{}
	if err := ctx.getBearoffProbs(anBoard[:], &anProb); err != nil {
		return nTotal, err
	}
	for i := 0; i < 32; i++ {
		arProbs[imin(i, _MAX_PROBS-1)] += float32(anProb[i]) / 65535.0
	}

	return nTotal, nil
}

// bgProb is the chance the side with board anBoard is still in the winner's
// home quadrant when the winner, with nTotal chequers left, finishes.
func (ctx *_OSRContext) bgProb(anBoard *[25]int, fOnRoll bool, nTotal int, arProbs []float32) (float32, error) {
	var anProb [32]int
	nTotPipsHome := 0

	/* total pips before out of opponent's home quadrant */
	for i := 18; i < 25; i++ {
		nTotPipsHome += anBoard[i] * (i - 17)
	}

	if nTotPipsHome == 0 || nTotal == 0 {
		return 0.0, nil
	}

	/* ( nTotal + 3 ) / 4 - 1: number of rolls before opponent is off.
	 * (nTotPipsHome + 2) / 3: numbers of rolls before I'm out of
	 * opponent's home quadrant (with consecutive 2-1's) */
	if (nTotal+3)/4-1 > (nTotPipsHome+2)/3 {
		return 0.0, nil
	}

	/* backgammon is possible; the chequers on the bar are not counted */
	if err := ctx.getBearoffProbs(anBoard[18:], &anProb); err != nil {
		return 0.0, err
	}

	j0 := 1
	if fOnRoll {
		j0 = 0
	}

	var r float32
	for i, p := range arProbs {
		if p > 0.0 {
			var s float32
			for j := i + j0; j < 32; j++ {
				s += float32(anProb[j]) / 65535.0
			}
			r += s * p
		}
	}

	return r, nil
}

// raceProbs estimates the outputs for anBoard, anBoard[1] being on roll,
// and the mean number of rolls each side needs to bear off.
func raceProbs(ctx *_OSRContext, anBoard _TanBoard, nGames int, arOutput *[_NUM_OUTPUTS]float32, arMu *[2]float32) error {
	var an _TanBoard
	var aarProbs [2][_MAX_PROBS]float32
	var aarGammonProbs [2][_MAX_GAMMON_PROBS]float32
	var arG, arBG [2]float32
	var anTotal [2]int
	var err error

	if nGames < 1 {
		return fmt.Errorf("%w: %d trials", ErrInvalidArgument, nGames)
	}

	/* Seed set to ensure that OSR are reproducable */
	ctx.mt.Seed(0)

	*arOutput = [_NUM_OUTPUTS]float32{}

	for i := 0; i < 2; i++ {
		an[i] = anBoard[i]
		if anTotal[i], err = ctx.osp(&an[i], nGames, &aarProbs[i], &aarGammonProbs[i]); err != nil {
			return err
		}
	}

	/* calculate OUTPUT_WIN */
	var w float32
	for i := 0; i < _MAX_PROBS; i++ {
		/* calculate the prob. of the opponent using more than i rolls
		 * to bear off */
		var s float32
		for j := i; j < _MAX_PROBS; j++ {
			s += aarProbs[0][j]
		}

		/* winning chance is: prob. of me bearing off in i rolls times
		 * prob. the opponent doesn't bear off in i rolls */
		w += aarProbs[1][i] * s
	}

	arOutput[_OUTPUT_WIN] = math32.Clamp(w, 0, 1)

	/* calculate gammon and backgammon probs */
	for i := 0; i < 2; i++ {
		if anTotal[1-i] != 15 {
			continue
		}

		/* gammon and backgammon possible */
		for j := 0; j < _MAX_GAMMON_PROBS; j++ {
			/* chance of opponent having borne all chequers of
			 * within j rolls */
			var s float32
			for k := 0; k < j+i; k++ {
				s += aarProbs[i][k]
			}

			/* gammon chance */
			arG[i] += aarGammonProbs[1-i][j] * s
		}

		if arG[i] > 0.0 {
			/* calculate backgammon probs */
			if arBG[i], err = ctx.bgProb(&an[1-i], i == 1, anTotal[i], aarProbs[i][:]); err != nil {
				return err
			}
		}
	}

	arOutput[_OUTPUT_WINGAMMON] = math32.Clamp(arG[1], 0, 1)
	arOutput[_OUTPUT_LOSEGAMMON] = math32.Clamp(arG[0], 0, 1)
	arOutput[_OUTPUT_WINBACKGAMMON] = math32.Clamp(arBG[1], 0, 1)
	arOutput[_OUTPUT_LOSEBACKGAMMON] = math32.Clamp(arBG[0], 0, 1)

	/* calculate average number of rolls to bear off */
	if arMu != nil {
		for i := 0; i < 2; i++ {
			arMu[i] = 0.0
			for j := 0; j < _MAX_PROBS; j++ {
				arMu[i] += float32(j) * aarProbs[i][j]
			}
		}
	}

	return nil
}

func imin(x int, y int) int {
	if x < y {
		return x
	}
	return y
}
