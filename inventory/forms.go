package inventory

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validation messages shown next to form fields.
const (
	MsgProductNameRequired  = "Product name is required."
	MsgCategoryNameRequired = "Category name is required."
	MsgInvalidStock         = "Invalid stock."
	MsgInvalidPrice         = "Invalid price."
	MsgInvalidCategory      = "Invalid category."
)

// FormValue is raw form text. It decodes from JSON strings, numbers and null
// so clients may post either.
type FormValue string

func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	*v = FormValue(data)
	return nil
}

func (v FormValue) trimmed() string {
	return strings.TrimSpace(string(v))
}

// ProductForm is the product create/edit form as submitted.
type ProductForm struct {
	Name        FormValue `json:"name"`
	CategoryID  FormValue `json:"category_id"`
	Stock       FormValue `json:"stock"`
	Price       FormValue `json:"price"`
	Description FormValue `json:"description"`
}

// ProductInput is a validated ProductForm.
type ProductInput struct {
	Name        string
	CategoryID  *int64
	Stock       int
	Price       float64
	Description *string
}

func parseStock(raw FormValue) (int, bool) {
	n, err := strconv.Atoi(raw.trimmed())
	if err != nil {
		return 0, false
	}
	return n, true
}

func parsePrice(raw FormValue) (float64, bool) {
	f, err := strconv.ParseFloat(raw.trimmed(), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// nullable maps blank text to nil.
func nullable(raw FormValue) *string {
	s := raw.trimmed()
	if s == "" {
		return nil
	}
	return &s
}

// Parse coerces and validates the form. Empty category and description
// become nil.
func (f ProductForm) Parse() (ProductInput, error) {
	var in ProductInput
	errs := validation.Errors{}

	in.Name = f.Name.trimmed()
	errs["name"] = validation.Validate(in.Name, validation.Required.Error(MsgProductNameRequired))

	if stock, ok := parseStock(f.Stock); ok {
		in.Stock = stock
		errs["stock"] = validation.Validate(in.Stock, validation.Min(0).Error(MsgInvalidStock))
	} else {
		errs["stock"] = validation.NewError("invalid_stock", MsgInvalidStock)
	}

	if price, ok := parsePrice(f.Price); ok {
		in.Price = price
		errs["price"] = validation.Validate(in.Price, validation.Min(0.0).Error(MsgInvalidPrice))
	} else {
		errs["price"] = validation.NewError("invalid_price", MsgInvalidPrice)
	}

	if s := f.CategoryID.trimmed(); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			errs["category_id"] = validation.NewError("invalid_category", MsgInvalidCategory)
		} else {
			in.CategoryID = &id
		}
	}

	in.Description = nullable(f.Description)

	if err := fromValidation(errs.Filter()); err != nil {
		return ProductInput{}, err
	}
	return in, nil
}

// StockForm is the inline stock editor value.
type StockForm struct {
	Stock FormValue `json:"stock"`
}

func (f StockForm) Parse() (int, error) {
	stock, ok := parseStock(f.Stock)
	if !ok || stock < 0 {
		return 0, &ValidationError{Fields: map[string]string{"stock": MsgInvalidStock}}
	}
	return stock, nil
}

// CategoryForm is the category create/edit form as submitted.
type CategoryForm struct {
	Name FormValue `json:"name"`
}

// CategoryInput is a validated CategoryForm.
type CategoryInput struct {
	Name string `json:"name"`
}

func (f CategoryForm) Parse() (CategoryInput, error) {
	in := CategoryInput{Name: f.Name.trimmed()}
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error(MsgCategoryNameRequired)),
	)
	if err := fromValidation(err); err != nil {
		return CategoryInput{}, err
	}
	return in, nil
}
