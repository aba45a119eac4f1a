package quiz

// Scoring rules for one turn.
const (
	PointsPerLevel      = 200
	StreakBonusStep     = 5
	MaxStreakBonusSteps = 5
)

var basePoints = map[string]int{
	"easy":   10,
	"medium": 20,
	"hard":   30,
}

// BasePoints is the reward for a correct answer at difficulty.
func BasePoints(difficulty string) int {
	if p, ok := basePoints[difficulty]; ok {
		return p
	}
	return basePoints["easy"]
}

// StreakBonus is the extra reward for the streak-th consecutive correct answer.
func StreakBonus(streak int) int {
	if streak <= 1 {
		return 0
	}
	return StreakBonusStep * min(streak-1, MaxStreakBonusSteps)
}

// LevelFor is the level earned by a total score.
func LevelFor(totalScore int) int {
	if totalScore < 0 {
		return 1
	}
	return totalScore/PointsPerLevel + 1
}
