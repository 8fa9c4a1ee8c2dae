// Package mt19937 is the 32-bit Mersenne Twister (Matsumoto and Nishimura,
// mt19937ar) used to drive one-sided rollouts. Seeding and output follow the
// reference implementation so simulated dice match other gnubg builds.
package mt19937

const (
	n         = 624
	m         = 397
	matrixA   = 0x9908b0df
	upperMask = 0x80000000
	lowerMask = 0x7fffffff
)

var mag01 = [2]uint32{0, matrixA}

// MT holds the generator state. The zero value behaves as if seeded with 5489.
type MT struct {
	mt     [n]uint32
	mti    int
	seeded bool
}

// New returns a generator seeded with s.
func New(s uint32) *MT {
	var g MT
	g.Seed(s)
	return &g
}

// Seed reinitialises the state, init_genrand in the reference code.
func (g *MT) Seed(s uint32) {
	g.mt[0] = s
	for i := 1; i < n; i++ {
		g.mt[i] = 1812433253*(g.mt[i-1]^(g.mt[i-1]>>30)) + uint32(i)
	}
	g.mti = n
	g.seeded = true
}

// Uint32 returns the next value on [0, 0xffffffff], genrand_int32.
func (g *MT) Uint32() uint32 {
	if !g.seeded {
		g.Seed(5489)
	}
	if g.mti >= n {
		g.generate()
	}

	y := g.mt[g.mti]
	g.mti++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18

	return y
}

func (g *MT) generate() {
	var y uint32
	kk := 0

	for ; kk < n-m; kk++ {
		y = (g.mt[kk] & upperMask) | (g.mt[kk+1] & lowerMask)
		g.mt[kk] = g.mt[kk+m] ^ (y >> 1) ^ mag01[y&0x1]
	}
	for ; kk < n-1; kk++ {
		y = (g.mt[kk] & upperMask) | (g.mt[kk+1] & lowerMask)
		g.mt[kk] = g.mt[kk+(m-n)] ^ (y >> 1) ^ mag01[y&0x1]
	}
	y = (g.mt[n-1] & upperMask) | (g.mt[0] & lowerMask)
	g.mt[n-1] = g.mt[m-1] ^ (y >> 1) ^ mag01[y&0x1]

	g.mti = 0
}
