package gateway

import "garagetracker/internal/core"

// Cond is a single equality condition.
type Cond struct {
	Field string
	Value string
}

// Range is an inclusive date range on one field (gte From, lte To).
type Range struct {
	Field string
	From  core.Date
	To    core.Date
}

// Order sorts results by one field.
type Order struct {
	Field string
	Desc  bool
}

// Filter selects rows from a Table. The zero Filter selects everything in
// insertion order.
type Filter struct {
	Eq    []Cond
	Range *Range
	Order *Order
}

// Where starts a filter with one equality condition.
func Where(field, value string) Filter {
	return Filter{}.And(field, value)
}

// All selects every row.
func All() Filter { return Filter{} }

// And adds an equality condition.
func (f Filter) And(field, value string) Filter {
	eq := make([]Cond, len(f.Eq), len(f.Eq)+1)
	copy(eq, f.Eq)
	f.Eq = append(eq, Cond{Field: field, Value: value})
	return f
}

// Between restricts field to [from, to], replacing any previous range.
func (f Filter) Between(field string, from, to core.Date) Filter {
	f.Range = &Range{Field: field, From: from, To: to}
	return f
}

// InRange is Between over a core.DateRange.
func (f Filter) InRange(field string, r core.DateRange) Filter {
	return f.Between(field, r.Start, r.End)
}

// OrderBy sets the result order.
func (f Filter) OrderBy(field string, desc bool) Filter {
	f.Order = &Order{Field: field, Desc: desc}
	return f
}

// Fields lists every field name the filter refers to.
func (f Filter) Fields() []string {
	var out []string
	for _, c := range f.Eq {
		out = append(out, c.Field)
	}
	if f.Range != nil {
		out = append(out, f.Range.Field)
	}
	if f.Order != nil {
		out = append(out, f.Order.Field)
	}
	return out
}
