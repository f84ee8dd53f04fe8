package model

import (
	"fmt"
	"math/big"
	"time"
)

// Numeric is an exact rational amount stored as numerator and denominator.
type Numeric struct {
	Num   int64
	Denom int64
}

// NewNumeric returns num/denom.
func NewNumeric(num, denom int64) Numeric {
	return Numeric{Num: num, Denom: denom}
}

// String returns "num/denom".
func (n Numeric) String() string {
	return fmt.Sprintf("%d/%d", n.Num, n.Denom)
}

// Equal compares by value, so 1/2 equals 2/4.
func (n Numeric) Equal(o Numeric) bool {
	if n.Denom == 0 || o.Denom == 0 {
		return n == o
	}
	l := new(big.Int).Mul(big.NewInt(n.Num), big.NewInt(o.Denom))
	r := new(big.Int).Mul(big.NewInt(o.Num), big.NewInt(n.Denom))
	return l.Cmp(r) == 0
}

// Float64 approximates the value.
func (n Numeric) Float64() float64 {
	if n.Denom == 0 {
		return 0
	}
	return float64(n.Num) / float64(n.Denom)
}

// Address is a postal address embedded in business objects.
type Address struct {
	Name  string
	Addr1 string
	Addr2 string
	Addr3 string
	Addr4 string
	Phone string
	Fax   string
	Email string
}

// OwnerType selects which kind of object an Owner points at. The numeric
// values are persisted.
type OwnerType int

const (
	OwnerNone OwnerType = iota
	OwnerUndefined
	OwnerCustomer
	OwnerJob
	OwnerVendor
	OwnerEmployee
)

// TypeName returns the type name of the referenced object, or "" when the
// owner type does not reference an object.
func (t OwnerType) TypeName() string {
	switch t {
	case OwnerCustomer:
		return TypeCustomer
	case OwnerJob:
		return TypeJob
	case OwnerVendor:
		return TypeVendor
	case OwnerEmployee:
		return TypeEmployee
	default:
		return ""
	}
}

// Owner is the customer, job, vendor or employee an order or invoice belongs to.
type Owner struct {
	Type     OwnerType
	Instance Instance
}

// IsSet reports whether the owner references an object.
func (o Owner) IsSet() bool {
	return o.Instance != nil && o.Type.TypeName() != ""
}

// Date is a calendar day without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String returns the ISO form YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}
