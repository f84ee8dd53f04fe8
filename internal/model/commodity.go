package model

import "fmt"

// Commodity is a currency, stock or other unit an account is denominated in.
type Commodity struct {
	Base
	namespace   string
	mnemonic    string
	fullname    string
	cusip       string
	fraction    int
	quoteFlag   bool
	quoteSource string
	quoteTZ     string
}

// NewCommodity creates a commodity in book.
func NewCommodity(book *Book) *Commodity {
	c := &Commodity{fraction: 100}
	Attach(book, TypeCommodity, c)
	return c
}

func (c *Commodity) Namespace() string   { return c.namespace }
func (c *Commodity) Mnemonic() string    { return c.mnemonic }
func (c *Commodity) Fullname() string    { return c.fullname }
func (c *Commodity) Cusip() string       { return c.cusip }
func (c *Commodity) Fraction() int       { return c.fraction }
func (c *Commodity) QuoteFlag() bool     { return c.quoteFlag }
func (c *Commodity) QuoteSource() string { return c.quoteSource }
func (c *Commodity) QuoteTZ() string     { return c.quoteTZ }

func (c *Commodity) SetNamespace(v string)   { c.namespace = v; c.MarkDirty() }
func (c *Commodity) SetMnemonic(v string)    { c.mnemonic = v; c.MarkDirty() }
func (c *Commodity) SetFullname(v string)    { c.fullname = v; c.MarkDirty() }
func (c *Commodity) SetCusip(v string)       { c.cusip = v; c.MarkDirty() }
func (c *Commodity) SetFraction(v int)       { c.fraction = v; c.MarkDirty() }
func (c *Commodity) SetQuoteFlag(v bool)     { c.quoteFlag = v; c.MarkDirty() }
func (c *Commodity) SetQuoteSource(v string) { c.quoteSource = v; c.MarkDirty() }
func (c *Commodity) SetQuoteTZ(v string)     { c.quoteTZ = v; c.MarkDirty() }

// UniqueName returns "namespace::mnemonic".
func (c *Commodity) UniqueName() string {
	return fmt.Sprintf("%s::%s", c.namespace, c.mnemonic)
}

// Property implements PropertyAccessor.
func (c *Commodity) Property(name string) (any, bool) {
	switch name {
	case "namespace":
		return c.namespace, true
	case "mnemonic":
		return c.mnemonic, true
	case "fullname":
		return c.fullname, true
	case "cusip":
		return c.cusip, true
	case "fraction":
		return c.fraction, true
	case "quote-flag":
		return c.quoteFlag, true
	case "quote-source":
		return c.quoteSource, true
	case "quote-tz":
		return c.quoteTZ, true
	}
	return c.property(name)
}

// SetProperty implements PropertyAccessor.
func (c *Commodity) SetProperty(name string, value any) error {
	var err error
	switch name {
	case "namespace":
		err = assign(&c.namespace, name, value)
	case "mnemonic":
		err = assign(&c.mnemonic, name, value)
	case "fullname":
		err = assign(&c.fullname, name, value)
	case "cusip":
		err = assign(&c.cusip, name, value)
	case "fraction":
		err = assign(&c.fraction, name, value)
	case "quote-flag":
		err = assign(&c.quoteFlag, name, value)
	case "quote-source":
		err = assign(&c.quoteSource, name, value)
	case "quote-tz":
		err = assign(&c.quoteTZ, name, value)
	default:
		return c.setProperty(name, value)
	}
	if err == nil {
		c.MarkDirty()
	}
	return err
}
