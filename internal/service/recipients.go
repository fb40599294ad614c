package service

import "strings"

// IsValidPhone reports whether phone is a Taiwan mobile number:
// starts with "09", exactly 10 characters, all decimal digits.
func IsValidPhone(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	if !strings.HasPrefix(phone, "09") {
		return false
	}
	for _, c := range phone {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ParsePhoneList splits a free-form recipient string on commas and
// semicolons, trims whitespace, and drops empty fragments.
func ParsePhoneList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})

	phones := make([]string, 0, len(fields))
	for _, f := range fields {
		if p := strings.TrimSpace(f); p != "" {
			phones = append(phones, p)
		}
	}
	return phones
}

// ValidatePhoneNumbers partitions phone numbers into valid and invalid,
// trimming whitespace first. Invalid numbers never abort a request; the
// caller decides what an empty valid set means.
func ValidatePhoneNumbers(phones []string) (valid, invalid []string) {
	valid = []string{}
	invalid = []string{}

	for _, phone := range phones {
		phone = strings.TrimSpace(phone)
		if IsValidPhone(phone) {
			valid = append(valid, phone)
		} else {
			invalid = append(invalid, phone)
		}
	}
	return valid, invalid
}

// DedupePhones removes duplicates keeping first-seen order
func DedupePhones(phones []string) []string {
	seen := make(map[string]struct{}, len(phones))
	out := make([]string, 0, len(phones))

	for _, phone := range phones {
		if _, ok := seen[phone]; ok {
			continue
		}
		seen[phone] = struct{}{}
		out = append(out, phone)
	}
	return out
}

// ChunkRecipients splits phones into order-preserving chunks of at most
// size entries. The last chunk holds the remainder; no chunk is empty.
func ChunkRecipients(phones []string, size int) [][]string {
	if size <= 0 || len(phones) == 0 {
		return nil
	}

	chunks := make([][]string, 0, (len(phones)+size-1)/size)
	for start := 0; start < len(phones); start += size {
		end := start + size
		if end > len(phones) {
			end = len(phones)
		}
		chunks = append(chunks, phones[start:end])
	}
	return chunks
}
