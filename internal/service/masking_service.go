package service

import "strings"

// MaskingService masks personal data for display. All methods are pure and
// rune-safe; customer data is frequently CJK text.
type MaskingService struct{}

// NewMaskingService creates a new masking service
func NewMaskingService() *MaskingService {
	return &MaskingService{}
}

// MaskName keeps the first and last character of a name longer than two
// characters; shorter names keep only the first.
func (s *MaskingService) MaskName(name string) string {
	runes := []rune(name)
	if len(runes) == 0 {
		return name
	}
	if len(runes) > 2 {
		return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
	}
	return string(runes[0]) + "*"
}

// MaskMobile keeps the first and last three digits of a mobile number of at
// least ten characters; shorter values pass through unchanged.
func (s *MaskingService) MaskMobile(phone string) string {
	runes := []rune(phone)
	if len(runes) < 10 {
		return phone
	}
	return string(runes[:3]) + "****" + string(runes[len(runes)-3:])
}

// MaskHomeNumber keeps the first and last two digits of a home number of at
// least eight characters.
func (s *MaskingService) MaskHomeNumber(phone string) string {
	runes := []rune(phone)
	if len(runes) < 8 {
		return phone
	}
	return string(runes[:2]) + "****" + string(runes[len(runes)-2:])
}

// MaskAddress masks the middle of an address longer than six characters
func (s *MaskingService) MaskAddress(address string) string {
	runes := []rune(address)
	if len(runes) <= 6 {
		return address
	}

	mid := len(runes) / 2
	maskLen := len(runes) - 6
	if maskLen > 4 {
		maskLen = 4
	}
	return string(runes[:mid-2]) + strings.Repeat("*", maskLen) + string(runes[mid+2:])
}

// MaskCustomerRow masks the personal-data columns of a query result row
// in place. Unknown columns pass through untouched.
func (s *MaskingService) MaskCustomerRow(row map[string]string) {
	if v, ok := row["cust_name"]; ok && v != "" {
		row["cust_name"] = s.MaskName(v)
	}
	if v, ok := row["mobile_number"]; ok && v != "" {
		row["mobile_number"] = s.MaskMobile(v)
	}
	if v, ok := row["home_number"]; ok && v != "" {
		row["home_number"] = s.MaskHomeNumber(v)
	}
	if v, ok := row["address"]; ok && v != "" {
		row["address"] = s.MaskAddress(v)
	}
}
