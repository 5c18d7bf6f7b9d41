package models

import (
	"fmt"
	"strings"
)

// Institution identifies a statement issuer whose layout is supported.
type Institution string

const (
	InstitutionIsracard Institution = "ISRACARD"
	InstitutionMax      Institution = "MAX"
	InstitutionCal      Institution = "CAL"
	InstitutionAmex     Institution = "AMEX"
	InstitutionHapoalim Institution = "HAPOALIM"
	InstitutionLeumi    Institution = "LEUMI"
	InstitutionDiscount Institution = "DISCOUNT"
	InstitutionMizrahi  Institution = "MIZRAHI"
	InstitutionOther    Institution = "OTHER"
)

// InstitutionKind separates card issuers from bank accounts; the two use
// different sign conventions and filters.
type InstitutionKind string

const (
	KindBank       InstitutionKind = "bank"
	KindCreditCard InstitutionKind = "credit_card"
)

var institutionKinds = map[Institution]InstitutionKind{
	InstitutionIsracard: KindCreditCard,
	InstitutionMax:      KindCreditCard,
	InstitutionCal:      KindCreditCard,
	InstitutionAmex:     KindCreditCard,
	InstitutionHapoalim: KindBank,
	InstitutionLeumi:    KindBank,
	InstitutionDiscount: KindBank,
	InstitutionMizrahi:  KindBank,
	InstitutionOther:    KindBank,
}

// AllInstitutions lists every known institution, OTHER last.
func AllInstitutions() []Institution {
	return []Institution{
		InstitutionIsracard, InstitutionMax, InstitutionCal, InstitutionAmex,
		InstitutionHapoalim, InstitutionLeumi, InstitutionDiscount, InstitutionMizrahi,
		InstitutionOther,
	}
}

// Kind returns the institution kind; unknown values are treated as banks.
func (i Institution) Kind() InstitutionKind {
	if k, ok := institutionKinds[i]; ok {
		return k
	}
	return KindBank
}

// IsCreditCard reports whether i issues card statements.
func (i Institution) IsCreditCard() bool {
	return i.Kind() == KindCreditCard
}

func (i Institution) String() string { return string(i) }

// ParseInstitution parses a case-insensitive institution name.
func ParseInstitution(s string) (Institution, error) {
	candidate := Institution(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := institutionKinds[candidate]; ok {
		return candidate, nil
	}
	return "", fmt.Errorf("unknown institution %q", s)
}
