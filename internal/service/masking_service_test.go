package service

import "testing"

func TestMaskName(t *testing.T) {
	svc := NewMaskingService()

	tests := []struct {
		name string
		want string
	}{
		{"王小明", "王*明"},
		{"歐陽小明", "歐**明"},
		{"王明", "王*"},
		{"王", "王*"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := svc.MaskName(tt.name); got != tt.want {
			t.Errorf("MaskName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestMaskMobile(t *testing.T) {
	svc := NewMaskingService()

	if got := svc.MaskMobile("0912345678"); got != "091****678" {
		t.Errorf("MaskMobile = %q, want 091****678", got)
	}
	// too short to mask
	if got := svc.MaskMobile("12345"); got != "12345" {
		t.Errorf("MaskMobile short = %q, want passthrough", got)
	}
}

func TestMaskHomeNumber(t *testing.T) {
	svc := NewMaskingService()

	if got := svc.MaskHomeNumber("0223456789"); got != "02****89" {
		t.Errorf("MaskHomeNumber = %q, want 02****89", got)
	}
	if got := svc.MaskHomeNumber("1234567"); got != "1234567" {
		t.Errorf("MaskHomeNumber short = %q, want passthrough", got)
	}
}

func TestMaskAddress(t *testing.T) {
	svc := NewMaskingService()

	if got := svc.MaskAddress("台北市信義區"); got != "台北市信義區" {
		t.Errorf("MaskAddress at threshold = %q, want passthrough", got)
	}

	masked := svc.MaskAddress("台北市信義區市府路45號")
	if masked == "台北市信義區市府路45號" {
		t.Error("MaskAddress should change a long address")
	}
	if len([]rune(masked)) == 0 {
		t.Error("MaskAddress must not return empty")
	}
}

func TestMaskCustomerRow(t *testing.T) {
	svc := NewMaskingService()

	row := map[string]string{
		"cust_id":       "42",
		"cust_name":     "王小明",
		"mobile_number": "0912345678",
		"home_number":   "0223456789",
		"address":       "台北市信義區市府路45號",
	}
	svc.MaskCustomerRow(row)

	if row["cust_id"] != "42" {
		t.Errorf("cust_id changed: %q", row["cust_id"])
	}
	if row["cust_name"] != "王*明" {
		t.Errorf("cust_name = %q", row["cust_name"])
	}
	if row["mobile_number"] != "091****678" {
		t.Errorf("mobile_number = %q", row["mobile_number"])
	}
	if row["home_number"] != "02****89" {
		t.Errorf("home_number = %q", row["home_number"])
	}
	if row["address"] == "台北市信義區市府路45號" {
		t.Error("address not masked")
	}
}
