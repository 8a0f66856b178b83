package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrDocument_InvalidLength = errors.New("document must have 11 (CPF) or 14 (CNPJ) digits")
var ErrDocument_RepeatedDigits = errors.New("document with all repeated digits is not valid")
var ErrDocument_CheckDigits = errors.New("document check digits do not match")

type DocumentKind string

const (
	DocumentKind_CPF  DocumentKind = "cpf"
	DocumentKind_CNPJ DocumentKind = "cnpj"
)

// Document - a normalized CPF or CNPJ identifier
type Document struct {
	Kind   DocumentKind
	Digits string
}

// ParseDocument strips formatting and validates length, repeated digits and
// both check digits. Structurally invalid identifiers are always rejected.
func ParseDocument(raw string) (*Document, error) {
	digits := onlyDigits(raw)
	switch len(digits) {
	case 11:
		if err := validateDigits(digits, cpfWeights); err != nil {
			return nil, err
		}
		return &Document{Kind: DocumentKind_CPF, Digits: digits}, nil
	case 14:
		if err := validateDigits(digits, cnpjWeights); err != nil {
			return nil, err
		}
		return &Document{Kind: DocumentKind_CNPJ, Digits: digits}, nil
	default:
		return nil, ErrDocument_InvalidLength
	}
}

// Format renders the canonical human readable form
func (document *Document) Format() string {
	d := document.Digits
	if document.Kind == DocumentKind_CPF {
		return fmt.Sprintf("%s.%s.%s-%s", d[0:3], d[3:6], d[6:9], d[9:11])
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s", d[0:2], d[2:5], d[5:8], d[8:12], d[12:14])
}

// FormatDocument is the parse+format round trip used by callers holding raw input
func FormatDocument(raw string) (string, error) {
	document, err := ParseDocument(raw)
	if err != nil {
		return "", err
	}
	return document.Format(), nil
}

var cpfWeights = [][]int{
	{10, 9, 8, 7, 6, 5, 4, 3, 2},
	{11, 10, 9, 8, 7, 6, 5, 4, 3, 2},
}

var cnpjWeights = [][]int{
	{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2},
	{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2},
}

func onlyDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allRepeated(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

func checkDigit(digits string, weights []int) byte {
	sum := 0
	for i, weight := range weights {
		sum += int(digits[i]-'0') * weight
	}
	rest := sum % 11
	if rest < 2 {
		return '0'
	}
	return byte('0' + 11 - rest)
}

func validateDigits(digits string, weights [][]int) error {
	if allRepeated(digits) {
		return ErrDocument_RepeatedDigits
	}
	for _, w := range weights {
		pos := len(w)
		if checkDigit(digits, w) != digits[pos] {
			return ErrDocument_CheckDigits
		}
	}
	return nil
}
