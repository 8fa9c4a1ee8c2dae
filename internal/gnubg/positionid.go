package gnubg

import "sync"

type _PositionKey struct {
	data [7]int
}

func (t _PositionKey) equals(that _PositionKey) bool {
	return t.data == that.data
}

func (t *_PositionKey) fromBoard(anBoard _TanBoard) {
	var anpBoard *[7]int = &t.data

	for i, j := 0, 0; i < 3; i, j = i+1, j+8 {
		anpBoard[i] = anBoard[1][j] + (anBoard[1][j+1] << 4) + (anBoard[1][j+2] << 8) + (anBoard[1][j+3] << 12) + (anBoard[1][j+4] << 16) + (anBoard[1][j+5] << 20) + (anBoard[1][j+6] << 24) + (anBoard[1][j+7] << 28)
		anpBoard[i+3] = anBoard[0][j] + (anBoard[0][j+1] << 4) + (anBoard[0][j+2] << 8) + (anBoard[0][j+3] << 12) + (anBoard[0][j+4] << 16) + (anBoard[0][j+5] << 20) + (anBoard[0][j+6] << 24) + (anBoard[0][j+7] << 28)
	}
	anpBoard[6] = anBoard[0][24] + (anBoard[1][24] << 4)
}

func positionFromBearoff(anBoard []int, usID int, nPoints int, nChequers int) {
	fBits := positionInv(usID, nChequers+nPoints, nPoints)

	for i := 0; i < nPoints; i++ {
		anBoard[i] = 0
	}

	j := nPoints - 1
	for i := 0; i < (nChequers + nPoints); i++ {
		if fBits&(1<<i) != 0 {
			if j == 0 {
				break
			}
			j--
		} else {
			anBoard[j]++
		}
	}
}

func positionInv(nID int, n int, r int) int {
	if r == 0 {
		return 0
	} else if n == r {
		return (1 << n) - 1
	}

	nC := combination(n-1, r)

	if nID >= nC {
		return (1 << (n - 1)) | positionInv(nID-nC, n-1, r-1)
	}
	return positionInv(nID, n-1, r)
}

const _MAX_N = 40
const _MAX_R = 25

var anCombination [_MAX_N][_MAX_R]int
var combinationOnce sync.Once

func initCombination() {
	for i := 0; i < _MAX_N; i++ {
		anCombination[i][0] = i + 1
	}

	for j := 1; j < _MAX_R; j++ {
		anCombination[0][j] = 0
	}

	for i := 1; i < _MAX_N; i++ {
		for j := 1; j < _MAX_R; j++ {
			anCombination[i][j] = anCombination[i-1][j-1] + anCombination[i-1][j]
		}
	}
}

func combination(n int, r int) int {
	if n < 1 || r < 1 || n > _MAX_N || r > _MAX_R {
		panic("combination out of range")
	}

	combinationOnce.Do(initCombination)

	return anCombination[n-1][r-1]
}

// positionBearoff returns the one-sided id of the first nPoints points of
// anBoard; points past the end of the slice count as empty.
func positionBearoff(anBoard []int, nPoints int, nChequers int) int {
	var fBits, i, j int

	if nPoints == 0 {
		panic("zero point bearoff")
	}

	point := func(i int) int {
		if i < len(anBoard) {
			return anBoard[i]
		}
		return 0
	}

	for j, i = nPoints-1, 0; i < nPoints; i++ {
		j += point(i)
	}

	fBits = 1 << j

	for i = 0; i < nPoints-1; i++ {
		j -= point(i) + 1
		fBits |= (1 << j)
	}

	return positionF(fBits, nChequers+nPoints, nPoints)
}

func positionF(fBits int, n int, r int) int {
	if n == r {
		return 0
	}

	if fBits&(1<<(n-1)) != 0 {
		return combination(n-1, r) + positionF(fBits, n-1, r-1)
	}
	return positionF(fBits, n-1, r)
}
