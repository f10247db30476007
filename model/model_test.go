package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrincipal_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		p    *Principal
		want string
	}{
		{"nil", nil, "User"},
		{"username", &Principal{Email: "a@x.io", Metadata: map[string]any{MetaUsername: "ana_1", MetaFullName: "Ana"}}, "ana_1"},
		{"full name", &Principal{Email: "a@x.io", Metadata: map[string]any{MetaUsername: "  ", MetaFullName: "Ana B"}}, "Ana B"},
		{"name", &Principal{Email: "a@x.io", Metadata: map[string]any{MetaName: "Ana"}}, "Ana"},
		{"non-string metadata", &Principal{Email: "ana@x.io", Metadata: map[string]any{MetaUsername: 42}}, "ana"},
		{"email local part", &Principal{Email: "ana@x.io"}, "ana"},
		{"nothing", &Principal{}, "User"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.DisplayName())
		})
	}
}

func TestPrincipal_Confirmed(t *testing.T) {
	now := time.Now()
	assert.False(t, (*Principal)(nil).Confirmed())
	assert.False(t, (&Principal{}).Confirmed())
	assert.True(t, (&Principal{EmailConfirmedAt: &now}).Confirmed())
}

func TestProduct_Clone(t *testing.T) {
	cat := int64(3)
	desc := "steel"
	p := Product{ID: 1, Name: "Rake", CategoryID: &cat, Description: &desc}

	c := p.Clone()
	assert.Equal(t, p, c)

	*c.CategoryID = 9
	*c.Description = "wood"
	assert.Equal(t, int64(3), *p.CategoryID)
	assert.Equal(t, "steel", *p.Description)

	assert.Nil(t, Product{}.Clone().CategoryID)
}
