package testsupport

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-inventory/backend"
	"github.com/goliatone/go-inventory/model"
	"github.com/google/uuid"
)

// Operation names accepted by CallCount, SetError and SetHook.
const (
	OpSignUp     = "auth.signup"
	OpSignIn     = "auth.signin"
	OpGetSession = "auth.get_session"
	OpGetUser    = "auth.get_user"
	OpSignOut    = "auth.signout"
)

// TableOp names a table operation, e.g. TableOp("products", "select").
func TableOp(table, op string) string {
	return table + "." + op
}

type fakeUser struct {
	principal model.Principal
	password  string
}

// FakeBackend is an in-memory backend.Client that counts calls and can be
// told to fail or block on any operation.
type FakeBackend struct {
	mu         sync.Mutex
	users      map[string]*fakeUser
	sessions   map[string]string
	products   []model.Product
	categories []model.Category
	nextID     int64
	calls      map[string]int
	errs       map[string]error
	hooks      map[string]func()

	// Now stamps created_at values.
	Now func() time.Time
}

var _ backend.Client = (*FakeBackend)(nil)

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		users:    map[string]*fakeUser{},
		sessions: map[string]string{},
		calls:    map[string]int{},
		errs:     map[string]error{},
		hooks:    map[string]func(){},
		Now:      func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) },
	}
}

// SetError makes op fail with err until cleared with a nil err.
func (f *FakeBackend) SetError(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, op)
		return
	}
	f.errs[op] = err
}

// SetHook runs fn at the start of every op call, outside the lock.
func (f *FakeBackend) SetHook(op string, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fn == nil {
		delete(f.hooks, op)
		return
	}
	f.hooks[op] = fn
}

// CallCount returns how many times op was invoked.
func (f *FakeBackend) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// ResetCalls zeroes every counter.
func (f *FakeBackend) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = map[string]int{}
}

// enter records a call, runs its hook and returns the injected error. On a
// nil error the lock is held and must be released by the caller.
func (f *FakeBackend) enter(op string) error {
	f.mu.Lock()
	f.calls[op]++
	hook := f.hooks[op]
	f.mu.Unlock()

	if hook != nil {
		hook()
	}

	f.mu.Lock()
	if err := f.errs[op]; err != nil {
		f.mu.Unlock()
		return &backend.Error{Op: op, Err: err}
	}
	return nil
}

// AddUser registers an account directly and returns its principal.
func (f *FakeBackend) AddUser(email, password string, confirmed bool, metadata map[string]any) model.Principal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addUserLocked(email, password, confirmed, metadata)
}

func (f *FakeBackend) addUserLocked(email, password string, confirmed bool, metadata map[string]any) model.Principal {
	now := f.Now()
	p := model.Principal{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(email),
		Metadata:  metadata,
		CreatedAt: now,
	}
	if confirmed {
		p.EmailConfirmedAt = &now
	}
	f.users[p.Email] = &fakeUser{principal: p, password: password}
	return p
}

// Login opens a session for an existing account and returns its token.
func (f *FakeBackend) Login(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[strings.ToLower(email)]
	if !ok {
		panic("testsupport: unknown user " + email)
	}
	return f.openSessionLocked(u.principal.ID)
}

func (f *FakeBackend) openSessionLocked(userID string) string {
	token := "tok-" + uuid.NewString()
	f.sessions[token] = userID
	return token
}

// SessionCount returns the number of open sessions.
func (f *FakeBackend) SessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

// SeedCategory stores a category and returns it with its id set.
func (f *FakeBackend) SeedCategory(c model.Category) model.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertCategoryLocked(c)
}

// SeedProduct stores a product and returns it with its id set.
func (f *FakeBackend) SeedProduct(p model.Product) model.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertProductLocked(p)
}

func (f *FakeBackend) id(explicit int64) int64 {
	if explicit > f.nextID {
		f.nextID = explicit
		return explicit
	}
	if explicit != 0 {
		return explicit
	}
	f.nextID++
	return f.nextID
}

func (f *FakeBackend) insertCategoryLocked(c model.Category) model.Category {
	c.ID = f.id(c.ID)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = f.Now()
	}
	f.categories = append(f.categories, c)
	return c
}

func (f *FakeBackend) insertProductLocked(p model.Product) model.Product {
	p.ID = f.id(p.ID)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = f.Now()
	}
	f.products = append(f.products, p.Clone())
	return p
}

// ProductRows returns a copy of every stored product.
func (f *FakeBackend) ProductRows() []model.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Product, len(f.products))
	for i, p := range f.products {
		out[i] = p.Clone()
	}
	return out
}

// CategoryRows returns a copy of every stored category.
func (f *FakeBackend) CategoryRows() []model.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Category(nil), f.categories...)
}

func (f *FakeBackend) Auth() backend.Auth {
	return fakeAuth{f}
}

func (f *FakeBackend) Products() backend.Table[model.Product] {
	return &fakeTable[model.Product]{
		f:     f,
		name:  "products",
		rows:  func() *[]model.Product { return &f.products },
		field: productField,
		set:   setProductField,
		insert: func(p model.Product) model.Product {
			p.ID = 0
			p.CreatedAt = time.Time{}
			return f.insertProductLocked(p)
		},
		owner: func(p model.Product) string { return p.UserID },
		clone: model.Product.Clone,
	}
}

func (f *FakeBackend) Categories() backend.Table[model.Category] {
	return &fakeTable[model.Category]{
		f:     f,
		name:  "categories",
		rows:  func() *[]model.Category { return &f.categories },
		field: categoryField,
		set:   setCategoryField,
		insert: func(c model.Category) model.Category {
			c.ID = 0
			c.CreatedAt = time.Time{}
			return f.insertCategoryLocked(c)
		},
		owner: func(c model.Category) string { return c.UserID },
		clone: func(c model.Category) model.Category { return c },
	}
}

type fakeAuth struct {
	f *FakeBackend
}

func (a fakeAuth) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*model.Principal, error) {
	if err := a.f.enter(OpSignUp); err != nil {
		return nil, err
	}
	defer a.f.mu.Unlock()

	if _, ok := a.f.users[strings.ToLower(email)]; ok {
		return nil, &backend.Error{Op: OpSignUp, Err: backend.ErrUserAlreadyRegistered}
	}
	p := a.f.addUserLocked(email, password, false, metadata)
	return &p, nil
}

func (a fakeAuth) SignInWithPassword(ctx context.Context, email, password string) (*model.Principal, *model.Session, error) {
	if err := a.f.enter(OpSignIn); err != nil {
		return nil, nil, err
	}
	defer a.f.mu.Unlock()

	u, ok := a.f.users[strings.ToLower(email)]
	if !ok || u.password != password {
		return nil, nil, &backend.Error{Op: OpSignIn, Err: backend.ErrInvalidCredentials}
	}
	p := u.principal
	token := a.f.openSessionLocked(p.ID)
	return &p, &model.Session{
		AccessToken:  token,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    a.f.Now().Add(time.Hour),
		User:         &p,
	}, nil
}

func (a fakeAuth) principalLocked(ctx context.Context) *model.Principal {
	userID, ok := a.f.sessions[backend.AccessTokenFrom(ctx)]
	if !ok {
		return nil
	}
	for _, u := range a.f.users {
		if u.principal.ID == userID {
			p := u.principal
			return &p
		}
	}
	return nil
}

func (a fakeAuth) GetSession(ctx context.Context) (*model.Session, error) {
	if err := a.f.enter(OpGetSession); err != nil {
		return nil, err
	}
	defer a.f.mu.Unlock()

	p := a.principalLocked(ctx)
	if p == nil {
		return nil, nil
	}
	return &model.Session{AccessToken: backend.AccessTokenFrom(ctx), ExpiresAt: a.f.Now().Add(time.Hour), User: p}, nil
}

func (a fakeAuth) GetUser(ctx context.Context) (*model.Principal, error) {
	if err := a.f.enter(OpGetUser); err != nil {
		return nil, err
	}
	defer a.f.mu.Unlock()
	return a.principalLocked(ctx), nil
}

func (a fakeAuth) SignOut(ctx context.Context) error {
	if err := a.f.enter(OpSignOut); err != nil {
		return err
	}
	defer a.f.mu.Unlock()
	delete(a.f.sessions, backend.AccessTokenFrom(ctx))
	return nil
}

type fakeTable[R any] struct {
	f      *FakeBackend
	name   string
	rows   func() *[]R
	field  func(R, string) (any, bool)
	set    func(*R, string, any) error
	insert func(R) R
	owner  func(R) string
	clone  func(R) R
}

func (t *fakeTable[R]) scoped(op string, q *backend.Query) error {
	owner, _ := q.EqValue(backend.ColUserID)
	if s, _ := owner.(string); s == "" {
		return &backend.Error{Op: op, Table: t.name, Err: backend.ErrUnscoped}
	}
	return nil
}

func (t *fakeTable[R]) match(row R, q *backend.Query) (bool, error) {
	for _, flt := range q.Filters() {
		v, ok := t.field(row, flt.Field)
		if !ok {
			return false, fmt.Errorf("column %s.%s does not exist", t.name, flt.Field)
		}
		switch flt.Op {
		case backend.OpEq:
			if !sameValue(v, flt.Value) {
				return false, nil
			}
		case backend.OpIn:
			found := false
			for _, want := range flt.Values {
				if sameValue(v, want) {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		}
	}
	return true, nil
}

func (t *fakeTable[R]) filtered(op string, q *backend.Query) ([]R, error) {
	var out []R
	for _, row := range *t.rows() {
		ok, err := t.match(row, q)
		if err != nil {
			return nil, &backend.Error{Op: op, Table: t.name, Err: err}
		}
		if ok {
			out = append(out, t.clone(row))
		}
	}
	return out, nil
}

func (t *fakeTable[R]) Select(ctx context.Context, q *backend.Query) ([]R, error) {
	op := TableOp(t.name, "select")
	if err := t.f.enter(op); err != nil {
		return nil, err
	}
	defer t.f.mu.Unlock()

	if err := t.scoped(op, q); err != nil {
		return nil, err
	}
	rows, err := t.filtered(op, q)
	if err != nil {
		return nil, err
	}
	orders := q.Orders()
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range orders {
			a, _ := t.field(rows[i], o.Field)
			b, _ := t.field(rows[j], o.Field)
			if sameValue(a, b) {
				continue
			}
			if o.Ascending {
				return lessValue(a, b)
			}
			return lessValue(b, a)
		}
		return false
	})
	if rows == nil {
		rows = []R{}
	}
	return rows, nil
}

func (t *fakeTable[R]) Single(ctx context.Context, q *backend.Query) (R, error) {
	op := TableOp(t.name, "single")
	var zero R
	if err := t.f.enter(op); err != nil {
		return zero, err
	}
	defer t.f.mu.Unlock()

	if err := t.scoped(op, q); err != nil {
		return zero, err
	}
	rows, err := t.filtered(op, q)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, &backend.Error{Op: op, Table: t.name, Err: backend.ErrNotFound}
	}
	return rows[0], nil
}

func (t *fakeTable[R]) Insert(ctx context.Context, row R) (R, error) {
	op := TableOp(t.name, "insert")
	var zero R
	if err := t.f.enter(op); err != nil {
		return zero, err
	}
	defer t.f.mu.Unlock()

	if t.owner(row) == "" {
		return zero, &backend.Error{Op: op, Table: t.name, Err: backend.ErrUnscoped}
	}
	return t.insert(row), nil
}

func (t *fakeTable[R]) Update(ctx context.Context, patch backend.Patch, q *backend.Query) error {
	op := TableOp(t.name, "update")
	if err := t.f.enter(op); err != nil {
		return err
	}
	defer t.f.mu.Unlock()

	if err := t.scoped(op, q); err != nil {
		return err
	}
	rows := *t.rows()
	for i := range rows {
		ok, err := t.match(rows[i], q)
		if err != nil {
			return &backend.Error{Op: op, Table: t.name, Err: err}
		}
		if !ok {
			continue
		}
		for col, v := range patch {
			if err := t.set(&rows[i], col, v); err != nil {
				return &backend.Error{Op: op, Table: t.name, Err: err}
			}
		}
	}
	return nil
}

func (t *fakeTable[R]) Delete(ctx context.Context, q *backend.Query) error {
	op := TableOp(t.name, "delete")
	if err := t.f.enter(op); err != nil {
		return err
	}
	defer t.f.mu.Unlock()

	if err := t.scoped(op, q); err != nil {
		return err
	}
	rows := *t.rows()
	kept := rows[:0]
	for _, row := range rows {
		ok, err := t.match(row, q)
		if err != nil {
			return &backend.Error{Op: op, Table: t.name, Err: err}
		}
		if !ok {
			kept = append(kept, row)
		}
	}
	*t.rows() = kept
	return nil
}

func productField(p model.Product, col string) (any, bool) {
	switch col {
	case backend.ColID:
		return p.ID, true
	case backend.ColName:
		return p.Name, true
	case backend.ColCategoryID:
		if p.CategoryID == nil {
			return nil, true
		}
		return *p.CategoryID, true
	case backend.ColStock:
		return p.Stock, true
	case backend.ColPrice:
		return p.Price, true
	case backend.ColDescription:
		if p.Description == nil {
			return nil, true
		}
		return *p.Description, true
	case backend.ColUserID:
		return p.UserID, true
	case backend.ColCreatedAt:
		return p.CreatedAt, true
	}
	return nil, false
}

var errImmutable = errors.New("column cannot be updated")

func setProductField(p *model.Product, col string, v any) error {
	switch col {
	case backend.ColName:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("invalid value for products.name: %v", v)
		}
		p.Name = s
	case backend.ColCategoryID:
		switch id := v.(type) {
		case nil:
			p.CategoryID = nil
		case int64:
			p.CategoryID = &id
		default:
			return fmt.Errorf("invalid value for products.category_id: %v", v)
		}
	case backend.ColStock:
		n, ok := v.(int)
		if !ok {
			return fmt.Errorf("invalid value for products.stock: %v", v)
		}
		p.Stock = n
	case backend.ColPrice:
		n, ok := v.(float64)
		if !ok {
			return fmt.Errorf("invalid value for products.price: %v", v)
		}
		p.Price = n
	case backend.ColDescription:
		switch d := v.(type) {
		case nil:
			p.Description = nil
		case string:
			p.Description = &d
		default:
			return fmt.Errorf("invalid value for products.description: %v", v)
		}
	case backend.ColID, backend.ColUserID, backend.ColCreatedAt:
		return fmt.Errorf("products.%s: %w", col, errImmutable)
	default:
		return fmt.Errorf("column products.%s does not exist", col)
	}
	return nil
}

func categoryField(c model.Category, col string) (any, bool) {
	switch col {
	case backend.ColID:
		return c.ID, true
	case backend.ColName:
		return c.Name, true
	case backend.ColUserID:
		return c.UserID, true
	case backend.ColCreatedAt:
		return c.CreatedAt, true
	}
	return nil, false
}

func setCategoryField(c *model.Category, col string, v any) error {
	switch col {
	case backend.ColName:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("invalid value for categories.name: %v", v)
		}
		c.Name = s
	case backend.ColID, backend.ColUserID, backend.ColCreatedAt:
		return fmt.Errorf("categories.%s: %w", col, errImmutable)
	default:
		return fmt.Errorf("column categories.%s does not exist", col)
	}
	return nil
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func lessValue(a, b any) bool {
	switch av := a.(type) {
	case int64:
		if bv, ok := b.(int64); ok {
			return av < bv
		}
	case int:
		if bv, ok := b.(int); ok {
			return av < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	case nil:
		return b != nil
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func parseFixtureTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
