package model

// Lot groups the splits of an account that open and close a position.
type Lot struct {
	Base
	account  *Account
	isClosed bool
}

// NewLot creates a lot in book.
func NewLot(book *Book) *Lot {
	l := &Lot{}
	Attach(book, TypeLot, l)
	return l
}

func (l *Lot) Account() *Account { return l.account }
func (l *Lot) IsClosed() bool    { return l.isClosed }

func (l *Lot) SetAccount(v *Account) { l.account = v; l.MarkDirty() }
func (l *Lot) SetClosed(v bool)      { l.isClosed = v; l.MarkDirty() }

// Property implements PropertyAccessor.
func (l *Lot) Property(name string) (any, bool) {
	switch name {
	case "account":
		if l.account == nil {
			return nil, true
		}
		return l.account, true
	case "is-closed":
		return l.isClosed, true
	}
	return l.property(name)
}

// SetProperty implements PropertyAccessor.
func (l *Lot) SetProperty(name string, value any) error {
	var err error
	switch name {
	case "account":
		err = assignRef(&l.account, name, value)
	case "is-closed":
		err = assign(&l.isClosed, name, value)
	default:
		return l.setProperty(name, value)
	}
	if err == nil {
		l.MarkDirty()
	}
	return err
}
