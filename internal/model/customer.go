package model

// Customer is a business partner orders and invoices can be owned by.
type Customer struct {
	Base
	id       string
	name     string
	notes    string
	active   bool
	credit   Numeric
	addr     Address
	shipAddr Address
}

// NewCustomer creates a customer in book.
func NewCustomer(book *Book) *Customer {
	c := &Customer{active: true, credit: NewNumeric(0, 1)}
	Attach(book, TypeCustomer, c)
	return c
}

func (c *Customer) ID() string        { return c.id }
func (c *Customer) Name() string      { return c.name }
func (c *Customer) Notes() string     { return c.notes }
func (c *Customer) Active() bool      { return c.active }
func (c *Customer) Credit() Numeric   { return c.credit }
func (c *Customer) Addr() Address     { return c.addr }
func (c *Customer) ShipAddr() Address { return c.shipAddr }

func (c *Customer) SetID(v string)        { c.id = v; c.MarkDirty() }
func (c *Customer) SetName(v string)      { c.name = v; c.MarkDirty() }
func (c *Customer) SetNotes(v string)     { c.notes = v; c.MarkDirty() }
func (c *Customer) SetActive(v bool)      { c.active = v; c.MarkDirty() }
func (c *Customer) SetCredit(v Numeric)   { c.credit = v; c.MarkDirty() }
func (c *Customer) SetAddr(v Address)     { c.addr = v; c.MarkDirty() }
func (c *Customer) SetShipAddr(v Address) { c.shipAddr = v; c.MarkDirty() }

// Property implements PropertyAccessor.
func (c *Customer) Property(name string) (any, bool) {
	switch name {
	case "id":
		return c.id, true
	case "name":
		return c.name, true
	case "notes":
		return c.notes, true
	case "active":
		return c.active, true
	case "credit":
		return c.credit, true
	case "addr":
		return c.addr, true
	case "shipaddr":
		return c.shipAddr, true
	}
	return c.property(name)
}

// SetProperty implements PropertyAccessor.
func (c *Customer) SetProperty(name string, value any) error {
	var err error
	switch name {
	case "id":
		err = assign(&c.id, name, value)
	case "name":
		err = assign(&c.name, name, value)
	case "notes":
		err = assign(&c.notes, name, value)
	case "active":
		err = assign(&c.active, name, value)
	case "credit":
		err = assign(&c.credit, name, value)
	case "addr":
		err = assign(&c.addr, name, value)
	case "shipaddr":
		err = assign(&c.shipAddr, name, value)
	default:
		return c.setProperty(name, value)
	}
	if err == nil {
		c.MarkDirty()
	}
	return err
}
