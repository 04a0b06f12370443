package core

// LedgerKind names the ledger a row belongs to.
type LedgerKind string

const (
	LedgerIncome    LedgerKind = "income"
	LedgerSalary    LedgerKind = "salary"
	LedgerMarketing LedgerKind = "marketing"
)

// DateRange is a closed interval [Start, End]; a single day has Start == End.
type DateRange struct {
	Start Date
	End   Date
}

// Summary is the financial picture of a DateRange.
//
// Expenses mirrors what the dashboard shows under "expenses": salary only.
// Marketing is reported on its own and subtracted from Profit separately.
type Summary struct {
	Range            DateRange
	Income           Money
	SalaryExpense    Money
	MarketingExpense Money
	Expenses         Money
	Profit           Money
}

// LedgerEntry is one flattened ledger row as exported to spreadsheets.
type LedgerEntry struct {
	ID     string
	Kind   LedgerKind
	Date   Date
	Label  string
	Amount Money
}

// Day returns the degenerate range [d, d].
func Day(d Date) DateRange {
	return DateRange{Start: d, End: d}
}

// MonthOf returns the calendar month containing d: first through last day,
// both inclusive.
func MonthOf(d Date) DateRange {
	first := NewDate(d.Year(), int(d.Month()), 1)
	last := first.Time.AddDate(0, 1, -1)
	return DateRange{Start: first, End: Date{Time: last}}
}

func (r DateRange) Validate() error {
	if err := r.Start.Validate(); err != nil {
		return Invalid("start", err.Error())
	}
	if err := r.End.Validate(); err != nil {
		return Invalid("end", err.Error())
	}
	if r.End.Before(r.Start) {
		return Invalid("end", "must not be before start")
	}
	return nil
}

// Contains reports whether d falls inside the range, bounds included.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !r.End.Before(d)
}

// Days lists every date in the range in order.
func (r DateRange) Days() []Date {
	var out []Date
	for d := r.Start; !r.End.Before(d); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// NewSummary derives Expenses and Profit from the three ledger totals.
func NewSummary(r DateRange, income, salary, marketing Money) Summary {
	return Summary{
		Range:            r,
		Income:           income,
		SalaryExpense:    salary,
		MarketingExpense: marketing,
		Expenses:         salary,
		Profit:           income.Sub(salary).Sub(marketing),
	}
}

// IncomeEntry flattens a service record into the income ledger.
func IncomeEntry(r ServiceRecord) LedgerEntry {
	return LedgerEntry{ID: r.ID, Kind: LedgerIncome, Date: r.ServiceDate, Label: r.ServiceType, Amount: r.Cost}
}

// SalaryEntry flattens a salary payment; notes, when present, extend the label.
func SalaryEntry(p SalaryPayment) LedgerEntry {
	label := "Salary payment"
	if p.Notes != "" {
		label += ": " + p.Notes
	}
	return LedgerEntry{ID: p.ID, Kind: LedgerSalary, Date: p.PaymentDate, Label: label, Amount: p.Amount}
}

func MarketingEntry(e MarketingExpense) LedgerEntry {
	return LedgerEntry{ID: e.ID, Kind: LedgerMarketing, Date: e.ExpenseDate, Label: e.Title, Amount: e.Amount}
}
