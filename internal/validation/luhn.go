// Package validation содержит проверки формата кодов, вводимых покупателем.
package validation

import (
	"regexp"
	"strings"
	"unicode"
)

var couponCodeRe = regexp.MustCompile(`^[A-Z0-9-]{3,32}$`)

// NormalizeCode приводит код к каноническому виду: без пробелов, в верхнем регистре.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), ""))
}

// IsValidCouponCode проверяет формат кода купона.
func IsValidCouponCode(code string) bool {
	return couponCodeRe.MatchString(code)
}

// IsValidGiftCardNumber проверяет номер подарочной карты по алгоритму Луна.
func IsValidGiftCardNumber(number string) bool {
	if len(number) < 8 || len(number) > 19 {
		return false
	}

	sum := 0
	double := false

	for i := len(number) - 1; i >= 0; i-- {
		ch := rune(number[i])
		if !unicode.IsDigit(ch) {
			return false
		}
		digit := int(ch - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}

	return sum%10 == 0
}
