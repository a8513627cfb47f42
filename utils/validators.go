package utils

import (
	"regexp"
	"unicode"

	"cragbase-api/models"
)

func IsValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

func IsValidPassword(password string) bool {
	if len(password) < 6 {
		return false
	}

	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	// At least 3 of 4 character types required
	count := 0
	if hasUpper {
		count++
	}
	if hasLower {
		count++
	}
	if hasNumber {
		count++
	}
	if hasSpecial {
		count++
	}

	return count >= 3
}

// IsValidRating checks the 1-3 star rating range used for routes and ascents
func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= 3
}

func IsValidGradingScale(scale models.GradingScale) bool {
	return scale == models.GradingScaleFB || scale == models.GradingScaleV
}

func IsValidAscentType(t models.AscentType) bool {
	switch t {
	case models.AscentTypeFlash, models.AscentTypeSend, models.AscentTypeRepeat, models.AscentTypeAttempt:
		return true
	}
	return false
}

func IsValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func IsValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
