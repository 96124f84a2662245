package battle

import "github.com/Lixing-Zhang/meal-max/backend/internal/models"

// difficultyModifier is subtracted from the raw effort score. Harder meals
// lose less.
var difficultyModifier = map[models.Difficulty]float64{
	models.DifficultyHigh: 1,
	models.DifficultyMed:  2,
	models.DifficultyLow:  3,
}

// Score returns price * len(cuisine) - modifier(difficulty).
func Score(meal models.Meal) float64 {
	return meal.Price*float64(len(meal.Cuisine)) - difficultyModifier[meal.Difficulty]
}
