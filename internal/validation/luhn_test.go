package validation

import "testing"

func TestIsValidGiftCardNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		valid  bool
	}{
		{
			name:   "valid example 1",
			number: "79927398713",
			valid:  true,
		},
		{
			name:   "valid example 2",
			number: "4539578763621486",
			valid:  true,
		},
		{
			name:   "invalid checksum",
			number: "79927398710",
			valid:  false,
		},
		{
			name:   "contains letters",
			number: "1234a67890",
			valid:  false,
		},
		{
			name:   "too short",
			number: "0",
			valid:  false,
		},
		{
			name:   "empty string",
			number: "",
			valid:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidGiftCardNumber(tt.number)
			if got != tt.valid {
				t.Fatalf("IsValidGiftCardNumber(%q) = %v, want %v", tt.number, got, tt.valid)
			}
		})
	}
}

func TestIsValidCouponCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{code: "SALE10", valid: true},
		{code: "BLACK-FRIDAY", valid: true},
		{code: NormalizeCode("  sale10 "), valid: true},
		{code: "AB", valid: false},
		{code: "sale10", valid: false},
		{code: "SALE 10", valid: false},
		{code: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := IsValidCouponCode(tt.code); got != tt.valid {
				t.Fatalf("IsValidCouponCode(%q) = %v, want %v", tt.code, got, tt.valid)
			}
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode(" 4111 1111\t1111 1111 "); got != "4111111111111111" {
		t.Fatalf("NormalizeCode = %q", got)
	}
	if got := NormalizeCode("black-friday"); got != "BLACK-FRIDAY" {
		t.Fatalf("NormalizeCode = %q", got)
	}
}
