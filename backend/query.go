package backend

// Column names shared by both inventory tables.
const (
	ColID          = "id"
	ColUserID      = "user_id"
	ColName        = "name"
	ColCategoryID  = "category_id"
	ColStock       = "stock"
	ColPrice       = "price"
	ColDescription = "description"
	ColCreatedAt   = "created_at"
)

// Operator is a predicate kind understood by every Table.
type Operator string

const (
	OpEq Operator = "eq"
	OpIn Operator = "in"
)

// Filter is a single predicate. Values is used by OpIn, Value by OpEq.
type Filter struct {
	Field  string
	Op     Operator
	Value  any
	Values []any
}

// Order sorts results by Field.
type Order struct {
	Field     string
	Ascending bool
}

// Query accumulates a column projection, predicates and ordering.
// The zero value selects every column of every row.
type Query struct {
	columns []string
	filters []Filter
	orders  []Order
}

// Patch maps column names to new values for Update.
type Patch map[string]any

func NewQuery() *Query {
	return &Query{}
}

// Select restricts the projection. With no columns every column is returned.
func (q *Query) Select(cols ...string) *Query {
	q.columns = append(q.columns, cols...)
	return q
}

func (q *Query) Eq(field string, value any) *Query {
	q.filters = append(q.filters, Filter{Field: field, Op: OpEq, Value: value})
	return q
}

// In matches rows whose field equals any of values. An empty list matches
// nothing.
func (q *Query) In(field string, values []any) *Query {
	q.filters = append(q.filters, Filter{Field: field, Op: OpIn, Values: values})
	return q
}

func (q *Query) Order(field string, ascending bool) *Query {
	q.orders = append(q.orders, Order{Field: field, Ascending: ascending})
	return q
}

func (q *Query) Columns() []string {
	if q == nil {
		return nil
	}
	return q.columns
}

func (q *Query) Filters() []Filter {
	if q == nil {
		return nil
	}
	return q.filters
}

func (q *Query) Orders() []Order {
	if q == nil {
		return nil
	}
	return q.orders
}

// EqValue returns the value of the first equality predicate on field.
func (q *Query) EqValue(field string) (any, bool) {
	for _, f := range q.Filters() {
		if f.Field == field && f.Op == OpEq {
			return f.Value, true
		}
	}
	return nil, false
}

// Int64s converts ids into the []any form expected by In.
func Int64s(ids []int64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
