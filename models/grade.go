package models

// Grade is one row of the grade conversion table. The id is ordinal, so the
// arithmetic mean over grade ids is meaningful. Each column holds the
// display value for one grading scale.
type Grade struct {
	ID uint   `json:"id" gorm:"primaryKey"`
	FB string `json:"FB" gorm:"column:fb;size:20"`
	V  string `json:"V" gorm:"column:v;size:20"`
}

// DisplayGrade returns the column matching the given grading scale.
// Unknown scales fall back to FB.
func (g Grade) DisplayGrade(scale GradingScale) string {
	switch scale {
	case GradingScaleV:
		return g.V
	default:
		return g.FB
	}
}
