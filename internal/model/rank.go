package model

// Rank is a label on the rank ladder.
type Rank string

// Ranks lists the ladder from lowest to highest.
var Ranks = []Rank{
	"R1", "B5", "B4", "B3", "B2", "B1",
	"S5", "S4", "S3", "S2", "S1",
	"G5", "G4", "G3", "G2", "G1",
	"P5", "P4", "P3", "P2", "P1",
	"D5", "D4", "D3", "D2", "D1",
	"M5", "M4", "M3", "M2", "M1",
}

var rankIndex = func() map[Rank]int {
	idx := make(map[Rank]int, len(Ranks))
	for i, r := range Ranks {
		idx[r] = i
	}
	return idx
}()

// LowestRank is the bottom of the ladder.
func LowestRank() Rank {
	return Ranks[0]
}

// Ordinal returns the ladder position of r, or 0 when r is not on the ladder.
func (r Rank) Ordinal() int {
	return rankIndex[r]
}

// Known reports whether r is on the ladder.
func (r Rank) Known() bool {
	_, ok := rankIndex[r]
	return ok
}

// Step moves r by delta positions, clamped to the ladder. An unknown rank
// resets to the lowest rank.
func (r Rank) Step(delta int) Rank {
	i, ok := rankIndex[r]
	if !ok {
		return LowestRank()
	}
	i += delta
	if i < 0 {
		i = 0
	}
	if i >= len(Ranks) {
		i = len(Ranks) - 1
	}
	return Ranks[i]
}
