package service

import "unicode/utf8"

// LengthInfo describes a message body against a character budget.
// Every rune counts as one character: CJK, ASCII and punctuation alike.
type LengthInfo struct {
	Count     int  `json:"char_count"`
	IsValid   bool `json:"is_valid"`
	MaxLength int  `json:"max_length"`
	Remaining int  `json:"remaining"`
}

// CheckLength measures text against maxLength
func CheckLength(text string, maxLength int) LengthInfo {
	count := utf8.RuneCountInString(text)

	remaining := maxLength - count
	if remaining < 0 {
		remaining = 0
	}

	return LengthInfo{
		Count:     count,
		IsValid:   count <= maxLength,
		MaxLength: maxLength,
		Remaining: remaining,
	}
}
