package validation

import (
	"strings"

	"github.com/blues/giftreg/internal/apperr"
)

// Digits 去掉所有非数字字符
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Email 要求存在 @ 且域名部分含有 .
func Email(email string) error {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return apperr.Validation("payer_email", "must contain a local part and @")
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	if dot <= 0 || dot == len(domain)-1 {
		return apperr.Validation("payer_email", "must contain a domain")
	}
	return nil
}

// TaxID 校验并返回规范化后的 CPF
func TaxID(raw string) (string, error) {
	cpf := Digits(raw)
	if len(cpf) != 11 {
		return "", apperr.Validation("tax_id", "must have 11 digits")
	}
	if allSame(cpf) {
		return "", apperr.Validation("tax_id", "invalid tax id")
	}
	if checkDigit(cpf[:9]) != cpf[9] || checkDigit(cpf[:10]) != cpf[10] {
		return "", apperr.Validation("tax_id", "invalid check digits")
	}
	return cpf, nil
}

// Phone 校验并返回规范化后的电话，区号加号码共10或11位
func Phone(raw string) (string, error) {
	phone := Digits(raw)
	if len(phone) != 10 && len(phone) != 11 {
		return "", apperr.Validation("phone", "must have 10 or 11 digits")
	}
	return phone, nil
}

// checkDigit 权重从 len+1 递减到 2
func checkDigit(digits string) byte {
	sum := 0
	weight := len(digits) + 1
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * weight
		weight--
	}
	return byte('0' + (sum*10)%11%10)
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
