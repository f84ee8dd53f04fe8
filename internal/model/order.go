package model

import "time"

// Order is a business order placed by or with an owner.
type Order struct {
	Base
	id         string
	notes      string
	reference  string
	active     bool
	dateOpened time.Time
	dateClosed time.Time
	owner      Owner
}

// NewOrder creates an order in book.
func NewOrder(book *Book) *Order {
	o := &Order{active: true}
	Attach(book, TypeOrder, o)
	return o
}

func (o *Order) ID() string            { return o.id }
func (o *Order) Notes() string         { return o.notes }
func (o *Order) Reference() string     { return o.reference }
func (o *Order) Active() bool          { return o.active }
func (o *Order) DateOpened() time.Time { return o.dateOpened }
func (o *Order) DateClosed() time.Time { return o.dateClosed }
func (o *Order) Owner() Owner          { return o.owner }

func (o *Order) SetID(v string)            { o.id = v; o.MarkDirty() }
func (o *Order) SetNotes(v string)         { o.notes = v; o.MarkDirty() }
func (o *Order) SetReference(v string)     { o.reference = v; o.MarkDirty() }
func (o *Order) SetActive(v bool)          { o.active = v; o.MarkDirty() }
func (o *Order) SetDateOpened(v time.Time) { o.dateOpened = v; o.MarkDirty() }
func (o *Order) SetDateClosed(v time.Time) { o.dateClosed = v; o.MarkDirty() }
func (o *Order) SetOwner(v Owner)          { o.owner = v; o.MarkDirty() }

// Property implements PropertyAccessor.
func (o *Order) Property(name string) (any, bool) {
	switch name {
	case "id":
		return o.id, true
	case "notes":
		return o.notes, true
	case "reference":
		return o.reference, true
	case "active":
		return o.active, true
	case "date-opened":
		return o.dateOpened, true
	case "date-closed":
		return o.dateClosed, true
	case "owner":
		return o.owner, true
	}
	return o.property(name)
}

// SetProperty implements PropertyAccessor.
func (o *Order) SetProperty(name string, value any) error {
	var err error
	switch name {
	case "id":
		err = assign(&o.id, name, value)
	case "notes":
		err = assign(&o.notes, name, value)
	case "reference":
		err = assign(&o.reference, name, value)
	case "active":
		err = assign(&o.active, name, value)
	case "date-opened":
		err = assign(&o.dateOpened, name, value)
	case "date-closed":
		err = assign(&o.dateClosed, name, value)
	case "owner":
		err = assign(&o.owner, name, value)
	default:
		return o.setProperty(name, value)
	}
	if err == nil {
		o.MarkDirty()
	}
	return err
}
