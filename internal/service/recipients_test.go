package service

import (
	"reflect"
	"testing"
)

// TestIsValidPhone covers the accepted format: exactly 10 digits with an 09 prefix
func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"0912345678", true},
		{"0987654321", true},
		{"0812345678", false}, // wrong prefix
		{"091234567", false},  // too short
		{"09123456789", false},
		{"091234567a", false},
		{"", false},
		{"12345", false},
		{"+0912345678", false},
	}

	for _, tt := range tests {
		if got := IsValidPhone(tt.phone); got != tt.want {
			t.Errorf("IsValidPhone(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}

// TestParsePhoneList splits on both commas and semicolons and drops blanks
func TestParsePhoneList(t *testing.T) {
	got := ParsePhoneList("0912345678,0987654321;0911222333")
	want := []string{"0912345678", "0987654321", "0911222333"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParsePhoneList = %v, want %v", got, want)
	}

	got = ParsePhoneList(" 0912345678 , ; ;0987654321 ")
	want = []string{"0912345678", "0987654321"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParsePhoneList with whitespace = %v, want %v", got, want)
	}

	if got := ParsePhoneList(""); len(got) != 0 {
		t.Errorf("ParsePhoneList(\"\") = %v, want empty", got)
	}
}

// TestValidatePhoneNumbers keeps only well-formed numbers and reports the rest
func TestValidatePhoneNumbers(t *testing.T) {
	valid, invalid := ValidatePhoneNumbers(ParsePhoneList("0912345678,0987654321;12345"))

	wantValid := []string{"0912345678", "0987654321"}
	wantInvalid := []string{"12345"}
	if !reflect.DeepEqual(valid, wantValid) {
		t.Errorf("valid = %v, want %v", valid, wantValid)
	}
	if !reflect.DeepEqual(invalid, wantInvalid) {
		t.Errorf("invalid = %v, want %v", invalid, wantInvalid)
	}
}

// TestDedupePhones keeps first occurrence order
func TestDedupePhones(t *testing.T) {
	got := DedupePhones([]string{"0912345678", "0987654321", "0912345678", "0911222333", "0987654321"})
	want := []string{"0912345678", "0987654321", "0911222333"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DedupePhones = %v, want %v", got, want)
	}
}

// TestChunkRecipients splits recipients into gateway-sized batches
func TestChunkRecipients(t *testing.T) {
	phones := make([]string, 45)
	for i := range phones {
		phones[i] = "0912345678"
	}

	chunks := ChunkRecipients(phones, 20)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantSizes := []int{20, 20, 5}
	for i, chunk := range chunks {
		if len(chunk) != wantSizes[i] {
			t.Errorf("chunk %d size = %d, want %d", i, len(chunk), wantSizes[i])
		}
	}

	if chunks := ChunkRecipients(nil, 20); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(chunks))
	}

	// exact multiple produces no trailing empty chunk
	if chunks := ChunkRecipients(phones[:40], 20); len(chunks) != 2 {
		t.Errorf("expected 2 chunks for 40 recipients, got %d", len(chunks))
	}
}
