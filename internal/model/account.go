package model

// Account types stored in the account_type column.
const (
	AccountBank      = "BANK"
	AccountCash      = "CASH"
	AccountAsset     = "ASSET"
	AccountLiability = "LIABILITY"
	AccountEquity    = "EQUITY"
	AccountIncome    = "INCOME"
	AccountExpense   = "EXPENSE"
	AccountRoot      = "ROOT"
)

// Account is a node of the chart of accounts.
type Account struct {
	Base
	name         string
	accountType  string
	commodity    *Commodity
	commoditySCU int
	nonStdSCU    bool
	parent       *Account
	code         string
	description  string
	hidden       bool
	placeholder  bool
}

// NewAccount creates an account in book.
func NewAccount(book *Book) *Account {
	a := &Account{accountType: AccountAsset}
	Attach(book, TypeAccount, a)
	return a
}

func (a *Account) Name() string          { return a.name }
func (a *Account) Type() string          { return a.accountType }
func (a *Account) Commodity() *Commodity { return a.commodity }
func (a *Account) CommoditySCU() int     { return a.commoditySCU }
func (a *Account) NonStdSCU() bool       { return a.nonStdSCU }
func (a *Account) Parent() *Account      { return a.parent }
func (a *Account) Code() string          { return a.code }
func (a *Account) Description() string   { return a.description }
func (a *Account) Hidden() bool          { return a.hidden }
func (a *Account) Placeholder() bool     { return a.placeholder }

func (a *Account) SetName(v string)          { a.name = v; a.MarkDirty() }
func (a *Account) SetType(v string)          { a.accountType = v; a.MarkDirty() }
func (a *Account) SetCommodity(v *Commodity) { a.commodity = v; a.MarkDirty() }
func (a *Account) SetCommoditySCU(v int)     { a.commoditySCU = v; a.MarkDirty() }
func (a *Account) SetNonStdSCU(v bool)       { a.nonStdSCU = v; a.MarkDirty() }
func (a *Account) SetParent(v *Account)      { a.parent = v; a.MarkDirty() }
func (a *Account) SetCode(v string)          { a.code = v; a.MarkDirty() }
func (a *Account) SetDescription(v string)   { a.description = v; a.MarkDirty() }
func (a *Account) SetHidden(v bool)          { a.hidden = v; a.MarkDirty() }
func (a *Account) SetPlaceholder(v bool)     { a.placeholder = v; a.MarkDirty() }

// Property implements PropertyAccessor.
func (a *Account) Property(name string) (any, bool) {
	switch name {
	case "name":
		return a.name, true
	case "account-type":
		return a.accountType, true
	case "commodity":
		if a.commodity == nil {
			return nil, true
		}
		return a.commodity, true
	case "commodity-scu":
		return a.commoditySCU, true
	case "non-std-scu":
		return a.nonStdSCU, true
	case "parent":
		if a.parent == nil {
			return nil, true
		}
		return a.parent, true
	case "code":
		return a.code, true
	case "description":
		return a.description, true
	case "hidden":
		return a.hidden, true
	case "placeholder":
		return a.placeholder, true
	}
	return a.property(name)
}

// SetProperty implements PropertyAccessor.
func (a *Account) SetProperty(name string, value any) error {
	var err error
	switch name {
	case "name":
		err = assign(&a.name, name, value)
	case "account-type":
		err = assign(&a.accountType, name, value)
	case "commodity":
		err = assignRef(&a.commodity, name, value)
	case "commodity-scu":
		err = assign(&a.commoditySCU, name, value)
	case "non-std-scu":
		err = assign(&a.nonStdSCU, name, value)
	case "parent":
		err = assignRef(&a.parent, name, value)
	case "code":
		err = assign(&a.code, name, value)
	case "description":
		err = assign(&a.description, name, value)
	case "hidden":
		err = assign(&a.hidden, name, value)
	case "placeholder":
		err = assign(&a.placeholder, name, value)
	default:
		return a.setProperty(name, value)
	}
	if err == nil {
		a.MarkDirty()
	}
	return err
}
