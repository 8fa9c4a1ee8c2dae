package gnubg

import (
	"bgeval/internal/gnubg/math32"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"strconv"
	"sync"
)

type _BearOffType int

const (
	_BEAROFF_INVALID _BearOffType = iota
	_BEAROFF_ONESIDED
	_BEAROFF_TWOSIDED
	_BEAROFF_HYPERGAMMON
)

func (bt _BearOffType) String() string {
	switch bt {
	case _BEAROFF_ONESIDED:
		return "one-sided"
	case _BEAROFF_TWOSIDED:
		return "two-sided"
	case _BEAROFF_HYPERGAMMON:
		return "hypergammon"
	}
	return "invalid"
}

type _BearOffContext struct {
	bt          _BearOffType /* type of bearoff database */
	nPoints     int          /* number of points covered by database */
	nChequers   int          /* number of chequers for one-sided database */
	fCompressed bool         /* is database compressed? */
	fGammon     bool         /* gammon probs included */
	fND         bool         /* normal distibution instead of exact dist? */
	fHeuristic  bool         /* heuristic database? */
	szFilename  string
	p           []byte /* database in memory */
}

// bearoffProvider yields the 65535-scaled distribution of the number of
// rolls needed to bear off the chequers on anBoard.
type bearoffProvider interface {
	dist(anBoard []int, aus *[32]int) error
}

const (
	_BO_NONE              int = 0
	_BO_MUST_BE_ONE_SIDED int = 1
	_BO_HEURISTIC         int = 4
)

const _HEURISTIC_C = 15
const _HEURISTIC_P = 6

/* header + one position of 32 shorts */
const _HEURISTIC_SIZE = 40 + 54264*64

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func bearoffInit(dataDir fs.FS, szFilename string, bo int) (*_BearOffContext, error) {
	if bo&_BO_HEURISTIC != 0 {
		return &_BearOffContext{
			bt:         _BEAROFF_ONESIDED,
			nPoints:    _HEURISTIC_P,
			nChequers:  _HEURISTIC_C,
			fHeuristic: true,
			szFilename: "heuristic",
			p:          heuristicDatabase(),
		}, nil
	}

	if dataDir == nil || len(szFilename) == 0 {
		return nil, fmt.Errorf("%w: no bearoff database provided", ErrInvalidArgument)
	}

	sz, err := fs.ReadFile(dataDir, szFilename)
	if err != nil {
		return nil, fmt.Errorf("%w: reading bearoff database %v: %v", ErrIO, szFilename, err)
	}

	pbc, err := bearoffParse(sz, szFilename, bo)
	if err != nil {
		return nil, err
	}
	return pbc, nil
}

func bearoffParse(sz []byte, szFilename string, bo int) (*_BearOffContext, error) {
	pbc := _BearOffContext{szFilename: szFilename}

	if len(sz) < 40 {
		return nil, fmt.Errorf("%w: %v: bearoff database header", ErrTruncatedData, szFilename)
	}

	/* detect bearoff program */

	if string(sz[:5]) != "gnubg" {
		return nil, fmt.Errorf("%w: %v: unknown bearoff database", ErrFormat, szFilename)
	}

	/* one sided or two sided? */

	switch {
	case string(sz[6:6+2]) == "TS":
		pbc.bt = _BEAROFF_TWOSIDED
	case string(sz[6:6+2]) == "OS":
		pbc.bt = _BEAROFF_ONESIDED
	case sz[6] == 'H':
		pbc.bt = _BEAROFF_HYPERGAMMON
	default:
		return nil, fmt.Errorf("%w: %v: illegal bearoff type '%s'", ErrFormat, szFilename, sz[6:6+2])
	}

	if bo&_BO_MUST_BE_ONE_SIDED != 0 && pbc.bt != _BEAROFF_ONESIDED {
		return nil, fmt.Errorf("%w: %v: wrong bearoff type %v", ErrFormat, szFilename, pbc.bt)
	}

	if pbc.bt == _BEAROFF_HYPERGAMMON {
		pbc.nPoints = 25
		pbc.nChequers = atoi(string(sz[7 : 7+2]))
		pbc.p = sz
		return &pbc, nil
	}

	/* number of points */

	pbc.nPoints = atoi(string(sz[9 : 9+2]))
	if pbc.nPoints < 1 || pbc.nPoints >= 24 {
		return nil, fmt.Errorf("%w: %v: illegal number of points %v", ErrFormat, szFilename, pbc.nPoints)
	}

	/* number of chequers */

	pbc.nChequers = atoi(string(sz[12 : 12+2]))
	if pbc.nChequers < 1 || pbc.nChequers > 15 {
		return nil, fmt.Errorf("%w: %v: illegal number of chequers %v", ErrFormat, szFilename, pbc.nChequers)
	}

	if pbc.bt == _BEAROFF_ONESIDED {
		pbc.fGammon = atoi(string(sz[15])) == 1
		pbc.fCompressed = atoi(string(sz[17])) == 1
		pbc.fND = atoi(string(sz[19])) == 1

		nPos := combination(pbc.nPoints+pbc.nChequers, pbc.nPoints)
		var want int
		switch {
		case pbc.fND:
			want = 40 + nPos*16
		case pbc.fCompressed:
			want = 40 + nPos*pbc.indexEntrySize()
		case pbc.fGammon:
			want = 40 + nPos*128
		default:
			want = 40 + nPos*64
		}
		if len(sz) < want {
			return nil, fmt.Errorf("%w: %v: %d bytes, expected at least %d", ErrTruncatedData, szFilename, len(sz), want)
		}
	}

	pbc.p = sz

	return &pbc, nil
}

func bearoffClose(pbc *_BearOffContext) {
	if pbc == nil {
		return
	}
	pbc.p = nil
}

func (pbc *_BearOffContext) dist(anBoard []int, aus *[32]int) error {
	n := 0
	for i := 0; i < pbc.nPoints && i < len(anBoard); i++ {
		if anBoard[i] < 0 {
			return fmt.Errorf("%w: negative chequer count on point %d", ErrInvalidArgument, i+1)
		}
		n += anBoard[i]
	}
	if n > pbc.nChequers {
		return fmt.Errorf("%w: %d chequers, bearoff database holds %d", ErrInvalidArgument, n, pbc.nChequers)
	}

	return bearoffDist(pbc, positionBearoff(anBoard, pbc.nPoints, pbc.nChequers), aus, nil)
}

func generateBearoff(p []byte, nId int) {
	var anRoll [2]int
	var anBoard [_HEURISTIC_P]int
	var aProb [32]int

	for anRoll[0] = 1; anRoll[0] <= 6; anRoll[0]++ {
		for anRoll[1] = 1; anRoll[1] <= anRoll[0]; anRoll[1]++ {
			positionFromBearoff(anBoard[:], nId, _HEURISTIC_P, _HEURISTIC_C)
			iBest := heuristicBearoff(&anBoard, anRoll)

			if iBest >= nId {
				panic("iBest >= nId")
			}

			for i := 0; i < 31; i++ {
				us := int(p[(iBest<<6)|(i<<1)]) | int(p[(iBest<<6)|(i<<1)|1])<<8
				if anRoll[0] == anRoll[1] {
					aProb[i+1] += us
				} else {
					aProb[i+1] += us << 1
				}
			}
		}
	}

	for i := 0; i < 32; i++ {
		us := (aProb[i] + 18) / 36

		p[(nId<<6)|(i<<1)] = byte(us & 0xFF)
		p[(nId<<6)|(i<<1)|1] = byte(us >> 8)
	}
}

var (
	heuristicOnce sync.Once
	heuristicDB   []byte
)

// heuristicDatabase is built once and shared; it is never written after that.
func heuristicDatabase() []byte {
	heuristicOnce.Do(func() {
		pm := make([]byte, _HEURISTIC_SIZE)
		p := pm[40:]

		copy(pm, "gnubg-OS-06-15-0-0-0-heuristic")

		p[0] = 0xff
		p[1] = 0xff

		for i := 1; i < 54264; i++ {
			generateBearoff(p, i)
		}

		heuristicDB = pm
	})
	return heuristicDB
}

/* Make a plausible bearoff move (used to create approximate bearoff database). */
func heuristicBearoff(anBoard *[_HEURISTIC_P]int, anRoll [2]int) int {
	var c int    /* number of dice to play */
	var nMax int /* highest occupied point */
	var anDice [4]int
	var n int /* point to play from */

	if anRoll[0] == anRoll[1] {
		/* doubles */
		anDice = [4]int{anRoll[0], anRoll[0], anRoll[0], anRoll[0]}
		c = 4
	} else {
		/* non-doubles */
		if anRoll[0] <= anRoll[1] {
			panic("anRoll[0] <= anRoll[1]")
		}
		anDice[0] = anRoll[0]
		anDice[1] = anRoll[1]
		c = 2
	}

	for i := 0; i < c; i++ {
		for nMax = 5; nMax > 0; nMax-- {
			if anBoard[nMax] > 0 {
				break
			}
		}

		if anBoard[nMax] == 0 {
			/* finished bearoff */
			break
		}

		for {
			if anBoard[anDice[i]-1] > 0 {
				/* bear off exactly */
				n = anDice[i] - 1
				break
			}

			if anDice[i]-1 > nMax {
				/* bear off highest chequer */
				n = nMax
				break
			}

			nTotal := anDice[i] - 1
			n = -1
			for j := i + 1; j < c; j++ {
				nTotal += anDice[j]
				if nTotal < 6 && anBoard[nTotal] > 0 {
					/* there's a chequer we can bear off with subsequent dice;
					 * do it */
					n = nTotal
					break
				}
			}
			if n >= 0 {
				break
			}

			for iSearch := anDice[i]; iSearch <= nMax; iSearch++ {
				if anBoard[iSearch] >= 2 && /* at least 2 on source point */
					anBoard[iSearch-anDice[i]] == 0 && /* dest empty */
					(n == -1 || anBoard[iSearch] > anBoard[n]) {
					n = iSearch
				}
			}
			if n >= 0 {
				break
			}

			/* find the point with the most on it (or least on dest) */
			for iSearch := anDice[i]; iSearch <= nMax; iSearch++ {
				if n == -1 || anBoard[iSearch] > anBoard[n] ||
					(anBoard[iSearch] == anBoard[n] &&
						anBoard[iSearch-anDice[i]] < anBoard[n-anDice[i]]) {
					n = iSearch
				}
			}

			if n < 0 {
				panic("n < 0")
			}
			break
		}

		if anBoard[n] == 0 {
			panic("anBoard[n] == 0")
		}
		anBoard[n]--

		if n >= anDice[i] {
			anBoard[n-anDice[i]]++
		}
	}

	return positionBearoff(anBoard[:], _HEURISTIC_P, _HEURISTIC_C)
}

func bearoffDist(pbc *_BearOffContext, nPosID int, ausProb *[32]int, ausGammonProb *[32]int) error {
	if pbc == nil {
		return fmt.Errorf("%w: no bearoff database", ErrInvalidArgument)
	}
	if pbc.bt != _BEAROFF_ONESIDED {
		return fmt.Errorf("%w: invalid bearoff type: %v", ErrInvalidArgument, pbc.bt)
	}

	var aus [64]int
	var err error

	switch {
	case pbc.fND:
		err = readBearoffOneSidedND(pbc, nPosID, &aus)
	case pbc.fCompressed:
		err = getDistCompressed(&aus, pbc, nPosID)
	default:
		err = getDistUncompressed(&aus, pbc, nPosID)
	}
	if err != nil {
		return err
	}

	if ausProb != nil {
		copy(ausProb[:], aus[:32])
	}
	if ausGammonProb != nil {
		copy(ausGammonProb[:], aus[32:])
	}
	return nil
}

func (pbc *_BearOffContext) indexEntrySize() int {
	if pbc.fGammon {
		return 8
	}
	return 6
}

func readBearoffDatabase(pbc *_BearOffContext, offset int, bytes int) ([]byte, error) {
	if pbc.p == nil {
		return nil, fmt.Errorf("%w: bearoff database %v is closed", ErrInvalidArgument, pbc.szFilename)
	}
	if offset < 0 || offset+bytes > len(pbc.p) {
		return nil, fmt.Errorf("%w: %v: read of %d bytes at %d past end of database", ErrTruncatedData, pbc.szFilename, bytes, offset)
	}
	return pbc.p[offset : offset+bytes], nil
}

func copyBytes(aus *[64]int, ac []byte, nz int, ioff int, nzg int, ioffg int) {
	*aus = [64]int{}
	i := 0
	for j := 0; j < nz; j, i = j+1, i+2 {
		aus[ioff+j] = int(ac[i]) | int(ac[i+1])<<8
	}
	for j := 0; j < nzg; j, i = j+1, i+2 {
		aus[32+ioffg+j] = int(ac[i]) | int(ac[i+1])<<8
	}
}

func getDistUncompressed(aus *[64]int, pbc *_BearOffContext, nPosID int) error {
	nz, nzg := 32, 0
	if pbc.fGammon {
		nzg = 32
	}

	puch, err := readBearoffDatabase(pbc, 40+64*nPosID*(1+nzg/32), 2*(nz+nzg))
	if err != nil {
		return err
	}

	copyBytes(aus, puch, nz, 0, nzg, 0)

	return nil
}

func getDistCompressed(aus *[64]int, pbc *_BearOffContext, nPosID int) error {
	var ioff, nz, ioffg, nzg int
	nPos := combination(pbc.nPoints+pbc.nChequers, pbc.nPoints)
	indexEntrySize := pbc.indexEntrySize()

	/* find offsets and no. of non-zero elements */
	puch, err := readBearoffDatabase(pbc, 40+nPosID*indexEntrySize, indexEntrySize)
	if err != nil {
		return err
	}

	/* find offset */
	iOffset := int(binary.LittleEndian.Uint32(puch))

	nz = int(puch[4])
	ioff = int(puch[5])
	if pbc.fGammon {
		nzg = int(puch[6])
		ioffg = int(puch[7])
	}

	/* Sanity checks */
	if (iOffset > 64*nPos && 64*nPos > 0) || nz+ioff > 32 || nzg+ioffg > 32 {
		return fmt.Errorf("%w: the bearoff file '%v' is likely to be corrupted: "+
			"offset %v, dist size %v (offset %v), gammon dist size %v (offset %v)",
			ErrFormat, pbc.szFilename, iOffset, nz, ioff, nzg, ioffg)
	}

	/* read prob + gammon probs */
	iOffset = 40 /* the header */ + nPos*indexEntrySize /* the offset data */ + 2*iOffset /* offset to current position */

	puch, err = readBearoffDatabase(pbc, iOffset, 2*(nz+nzg))
	if err != nil {
		return err
	}

	copyBytes(aus, puch, nz, ioff, nzg, ioffg)

	return nil
}

func readBearoffOneSidedND(pbc *_BearOffContext, nPosID int, aus *[64]int) error {
	ac, err := readBearoffDatabase(pbc, 40+nPosID*16, 16)
	if err != nil {
		return err
	}

	var arx [4]float32
	for i := range arx {
		arx[i] = math.Float32frombits(binary.LittleEndian.Uint32(ac[4*i:]))
	}

	for i := 0; i < 32; i++ {
		aus[i] = ndScaled(fnd(float32(i), arx[0], arx[1]))
		aus[32+i] = ndScaled(fnd(float32(i), arx[2], arx[3]))
	}
	return nil
}

func ndScaled(r float32) int {
	return int(math32.Min(r, 1.0) * 65535.0)
}

/* normal density at x */
func fnd(x float32, mu float32, sigma float32) float32 {
	const epsilon = 1.0e-7

	if sigma <= epsilon {
		/* dirac delta function */
		if math32.Fabsf(mu-x) < epsilon {
			return 1.0
		}
		return 0.0
	}

	xm := (x - mu) / sigma

	return math32.Expf(-xm*xm/2.0) / (sigma * math32.Sqrtf(2.0*math.Pi))
}
