package gateway

import "fmt"

// Field names accepted in filters, shared by every store.
const (
	FieldID          = "id"
	FieldUserID      = "user_id"
	FieldCreatedAt   = "created_at"
	FieldName        = "name"
	FieldPhone       = "phone"
	FieldCustomerID  = "customer_id"
	FieldServiceDate = "service_date"
	FieldStatus      = "status"
	FieldIsActive    = "is_active"
	FieldEmployeeID  = "employee_id"
	FieldPaymentDate = "payment_date"
	FieldExpenseDate = "expense_date"
	FieldCategory    = "category"
)

// Filterable lists, per entity, the fields a Filter may name.
var Filterable = map[string][]string{
	EntityCustomers:         {FieldID, FieldUserID, FieldCreatedAt, FieldName, FieldPhone},
	EntityServiceRecords:    {FieldID, FieldUserID, FieldCreatedAt, FieldCustomerID, FieldServiceDate, FieldStatus},
	EntityEmployees:         {FieldID, FieldUserID, FieldCreatedAt, FieldName, FieldIsActive},
	EntitySalaryPayments:    {FieldID, FieldUserID, FieldCreatedAt, FieldEmployeeID, FieldPaymentDate},
	EntityMarketingExpenses: {FieldID, FieldUserID, FieldCreatedAt, FieldExpenseDate, FieldCategory},
}

// CheckFilter rejects filters naming fields the entity does not expose.
func CheckFilter(entity string, f Filter) error {
	allowed := Filterable[entity]
	for _, name := range f.Fields() {
		ok := false
		for _, a := range allowed {
			if a == name {
				ok = true
				break
			}
		}
		if !ok {
			return &StoreError{Op: "list", Entity: entity, Err: fmt.Errorf("%w: %s", ErrBadFilter, name)}
		}
	}
	return nil
}
