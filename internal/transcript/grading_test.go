package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeForBoundaries(t *testing.T) {
	cases := map[int]Grade{
		0: GradeF, 39: GradeF,
		40: GradeE, 44: GradeE,
		45: GradeD, 49: GradeD,
		50: GradeC, 59: GradeC,
		60: GradeB, 69: GradeB,
		70: GradeA, 100: GradeA,
	}
	for score, want := range cases {
		assert.Equal(t, want, GradeFor(score), "score %d", score)
	}
}

func TestGradeBandsPartitionScoreRange(t *testing.T) {
	counts := make(map[Grade]int)
	prev := GradeF
	for score := 0; score <= 100; score++ {
		g := GradeFor(score)
		assert.Contains(t, []Grade{GradeA, GradeB, GradeC, GradeD, GradeE, GradeF}, g)
		// grades only ever improve as the score rises
		assert.GreaterOrEqual(t, g.Points(), prev.Points(), "score %d", score)
		prev = g
		counts[g]++
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, 101, total)
	assert.Equal(t, 40, counts[GradeF])
	assert.Equal(t, 5, counts[GradeE])
	assert.Equal(t, 5, counts[GradeD])
	assert.Equal(t, 10, counts[GradeC])
	assert.Equal(t, 10, counts[GradeB])
	assert.Equal(t, 31, counts[GradeA])
}

func TestQualityPointsMonotonicInCreditHours(t *testing.T) {
	for _, g := range []Grade{GradeA, GradeB, GradeC, GradeD, GradeE, GradeF} {
		prev := -1.0
		for ch := 0; ch <= 12; ch++ {
			qp := QualityPoints(g, ch)
			assert.GreaterOrEqual(t, qp, prev, "grade %s ch %d", g, ch)
			prev = qp
			zero := g == GradeF || ch == 0
			assert.Equal(t, zero, qp == 0, "grade %s ch %d", g, ch)
		}
	}
}

func TestQualityPointsValues(t *testing.T) {
	assert.Equal(t, 15.0, QualityPoints(GradeA, 3))
	assert.Equal(t, 8.0, QualityPoints(GradeB, 2))
	assert.Equal(t, 0.0, QualityPoints(GradeF, 4))
	assert.Equal(t, 0.0, Grade("X").Points())
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, -0.13, Round2(-0.125))
	assert.Equal(t, 0.67, Round2(2.0/3))
	assert.Equal(t, 5.0, Round2(5))
}

func TestRoundSignificant(t *testing.T) {
	v, decimals := roundSignificant(3.75, 3)
	assert.Equal(t, 3.75, v)
	assert.Equal(t, 2, decimals)

	v, decimals = roundSignificant(0.5, 3)
	assert.Equal(t, 0.5, v)
	assert.Equal(t, 3, decimals)

	v, decimals = roundSignificant(4.0/3, 3)
	assert.Equal(t, 1.33, v)
	assert.Equal(t, 2, decimals)

	v, decimals = roundSignificant(0, 3)
	assert.Equal(t, 0.0, v)
	assert.Equal(t, 2, decimals)
}
