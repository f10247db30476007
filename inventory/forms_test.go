package inventory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductFormParse(t *testing.T) {
	tests := []struct {
		name   string
		form   ProductForm
		want   ProductInput
		fields map[string]string
	}{
		{
			name: "valid with optionals",
			form: ProductForm{Name: " Saw ", CategoryID: "3", Stock: "4", Price: "12.5", Description: " sharp "},
			want: ProductInput{Name: "Saw", CategoryID: ptr(int64(3)), Stock: 4, Price: 12.5, Description: ptr("sharp")},
		},
		{
			name: "blank optionals become nil",
			form: ProductForm{Name: "Saw", CategoryID: " ", Stock: "0", Price: "0", Description: "  "},
			want: ProductInput{Name: "Saw", Stock: 0, Price: 0},
		},
		{
			name:   "missing name",
			form:   ProductForm{Stock: "1", Price: "1"},
			fields: map[string]string{"name": MsgProductNameRequired},
		},
		{
			name:   "negative stock and price",
			form:   ProductForm{Name: "Saw", Stock: "-1", Price: "-1"},
			fields: map[string]string{"stock": MsgInvalidStock, "price": MsgInvalidPrice},
		},
		{
			name:   "non numeric",
			form:   ProductForm{Name: "Saw", Stock: "many", Price: "NaN"},
			fields: map[string]string{"stock": MsgInvalidStock, "price": MsgInvalidPrice},
		},
		{
			name:   "fractional stock is not truncated",
			form:   ProductForm{Name: "Saw", Stock: "5.5", Price: "1"},
			fields: map[string]string{"stock": MsgInvalidStock},
		},
		{
			name:   "bad category",
			form:   ProductForm{Name: "Saw", Stock: "1", Price: "1", CategoryID: "0"},
			fields: map[string]string{"category_id": MsgInvalidCategory},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.form.Parse()
			if tt.fields == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.fields, verr.Fields)
		})
	}
}

func TestStockFormParse(t *testing.T) {
	stock, err := StockForm{Stock: " 7 "}.Parse()
	require.NoError(t, err)
	assert.Equal(t, 7, stock)

	for _, raw := range []FormValue{"5.5", "1e2", "", "-3"} {
		_, err := StockForm{Stock: raw}.Parse()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "stock %q", raw)
		assert.Equal(t, MsgInvalidStock, verr.Fields["stock"])
	}
}

func TestProductForm_DecodesNumbersAndNull(t *testing.T) {
	var form ProductForm
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Saw","stock":4,"price":1.25,"category_id":null,"description":null}`), &form))

	in, err := form.Parse()
	require.NoError(t, err)
	assert.Equal(t, 4, in.Stock)
	assert.Equal(t, 1.25, in.Price)
	assert.Nil(t, in.CategoryID)
	assert.Nil(t, in.Description)
}

func TestCategoryFormParse(t *testing.T) {
	in, err := CategoryForm{Name: " Tools "}.Parse()
	require.NoError(t, err)
	assert.Equal(t, "Tools", in.Name)

	_, err = CategoryForm{}.Parse()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"name": MsgCategoryNameRequired}, verr.Fields)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"stock": MsgInvalidStock, "name": MsgProductNameRequired}}
	assert.Equal(t, "Product name is required. Invalid stock.", err.Error())
	assert.Equal(t, "", err.Message("price"))
}

func ptr[T any](v T) *T {
	return &v
}
