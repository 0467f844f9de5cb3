package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validProduct() *Product {
	return NewProduct("Basmati Rice 5kg", "", decimal.RequireFromString("499.00"), decimal.NewFromInt(5), 10)
}

func TestNewProduct(t *testing.T) {
	p := validProduct()
	assert.Equal(t, 10, p.Stock)
	assert.Equal(t, 10, p.InitialStock)
	assert.NoError(t, p.Validate())
}

func TestProduct_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *Product)
		want   error
	}{
		{"空名称", func(p *Product) { p.Name = "" }, ErrInvalidName},
		{"负价格", func(p *Product) { p.Price = decimal.NewFromInt(-1) }, ErrInvalidPrice},
		{"税率超过100", func(p *Product) { p.GSTRate = decimal.NewFromInt(101) }, ErrInvalidGSTRate},
		{"负补货点", func(p *Product) { p.ReorderPoint = -1 }, ErrInvalidReorderPoint},
		{"负供货周期", func(p *Product) { p.LeadTimeDays = -3 }, ErrInvalidLeadTime},
		{"负初始库存", func(p *Product) { p.InitialStock = -1 }, ErrInvalidInitialStock},
		{"非法图片地址", func(p *Product) { p.ImageURL = "not a url" }, ErrInvalidImageURL},
		{"非http图片地址", func(p *Product) { p.ImageURL = "ftp://cdn.example.com/a.png" }, ErrInvalidImageURL},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validProduct()
			tc.mutate(p)
			assert.ErrorIs(t, p.Validate(), tc.want)
		})
	}

	p := validProduct()
	p.ImageURL = "https://cdn.example.com/rice.png"
	assert.NoError(t, p.Validate())
}

func TestProduct_ApplyDiscount(t *testing.T) {
	p := validProduct()
	stock := p.Stock

	assert.NoError(t, p.ApplyDiscount(decimal.NewFromInt(10)))
	assert.True(t, decimal.RequireFromString("449.10").Equal(p.Price), p.Price.String())
	assert.Equal(t, stock, p.Stock)

	assert.ErrorIs(t, p.ApplyDiscount(decimal.Zero), ErrInvalidDiscount)
	assert.ErrorIs(t, p.ApplyDiscount(decimal.NewFromInt(100)), ErrInvalidDiscount)
}

func TestProduct_PriceWithTax(t *testing.T) {
	p := NewProduct("Tea", "", decimal.RequireFromString("200"), decimal.NewFromInt(18), 1)
	assert.True(t, decimal.RequireFromString("236").Equal(p.PriceWithTax()))
}

func TestProduct_NeedsReorder(t *testing.T) {
	p := validProduct()
	p.ReorderPoint = 5
	assert.False(t, p.NeedsReorder())
	p.Stock = 5
	assert.True(t, p.NeedsReorder())
}
