package progress

// Store keys owned by the ledger.
const (
	keyTotalScore     = "totalScore"
	keyCurrentStreak  = "currentStreak"
	keyBestStreak     = "bestStreak"
	keyLevel          = "level"
	keyTotalWords     = "totalWords"
	keyCorrectAnswers = "correctAnswers"
	keyCompletedWords = "completedWords"
	keyMissedWords    = "missedWords"
	keyWordAccuracy   = "wordAccuracy"
	keyDifficulty     = "difficultyStats"
	keyInitialized    = "initialized"

	keySelDifficulty = "difficulty"
	keySelCategory   = "category"
)

func completedCategoriesKey(difficulty string) string {
	return "completedCategories_" + difficulty
}

func categoryCompletedKey(difficulty, category string) string {
	return "categoryCompleted_" + difficulty + "_" + category
}
