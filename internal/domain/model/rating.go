package model

// Rating: агрегат отзывов, хранится внутри Agent и Consultant.
// Счётчики увеличиваются при создании отзыва, среднее вычисляется при чтении.
type Rating struct {
	TotalStars  int `json:"total_stars"`
	ReviewCount int `json:"review_count"`
}

// Average возвращает среднюю оценку; 0 при отсутствии отзывов.
func (r Rating) Average() float64 {
	if r.ReviewCount == 0 {
		return 0
	}
	return float64(r.TotalStars) / float64(r.ReviewCount)
}

// Out возвращает внешнее представление агрегата.
func (r Rating) Out() RatingOut {
	return RatingOut{
		TotalStars:  r.TotalStars,
		ReviewCount: r.ReviewCount,
		Average:     r.Average(),
	}
}

// RatingOut: агрегат с вычисленным средним.
type RatingOut struct {
	TotalStars  int     `json:"total_stars"`
	ReviewCount int     `json:"review_count"`
	Average     float64 `json:"average"`
}
