package split

// LCG constants. They are part of the reproducibility contract: historical
// fixtures depend on the exact recurrence and the division by 2^32.
const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
	lcgModulus    = 1 << 32
)

// LCG is a 32-bit linear congruential generator. It is not safe for
// concurrent use and not suitable for anything security related.
type LCG struct {
	state uint32
}

// NewLCG seeds a generator. The seed is reduced modulo 2^32.
func NewLCG(seed int64) *LCG {
	return &LCG{state: uint32(seed)}
}

// Next advances the state and returns it.
func (g *LCG) Next() uint32 {
	g.state = g.state*lcgMultiplier + lcgIncrement
	return g.state
}

// Float64 advances the state and maps it to [0,1).
func (g *LCG) Float64() float64 {
	return float64(g.Next()) / lcgModulus
}

// Intn returns a value in [0,n) derived from Float64.
func (g *LCG) Intn(n int) int {
	return int(g.Float64() * float64(n))
}

// Shuffle permutes indices in place with a Fisher-Yates pass driven by g.
func (g *LCG) Shuffle(indices []int) {
	for i := len(indices) - 1; i > 0; i-- {
		j := g.Intn(i + 1)
		indices[i], indices[j] = indices[j], indices[i]
	}
}
