package order

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLines() []Line {
	return []Line{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("100.00"), GSTRate: decimal.NewFromInt(18)},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("49.50"), GSTRate: decimal.Zero},
	}
}

func TestNewOrder_Totals(t *testing.T) {
	o, err := NewOrder("ORD1", 3, PaymentUPI, "leave at door", sampleLines())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.True(t, decimal.RequireFromString("249.50").Equal(o.Subtotal), o.Subtotal.String())
	assert.True(t, decimal.RequireFromString("36.00").Equal(o.Tax), o.Tax.String())
	assert.True(t, decimal.RequireFromString("285.50").Equal(o.Total), o.Total.String())
	assert.Equal(t, 2, o.QuantityOf(1))
	assert.Equal(t, 0, o.QuantityOf(99))
}

func TestNewOrder_Rejects(t *testing.T) {
	_, err := NewOrder("ORD1", 3, PaymentCOD, "", nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	free := []Line{{ProductID: 1, Quantity: 1, UnitPrice: decimal.Zero, GSTRate: decimal.Zero}}
	_, err = NewOrder("ORD1", 3, PaymentCOD, "", free)
	assert.ErrorIs(t, err, ErrNonPositiveTotal)
}

func TestOrder_StateMachine(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tc := range cases {
		o := &Order{Status: tc.from}
		err := o.TransitionTo(tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s->%s", tc.from, tc.to)
			assert.Equal(t, tc.to, o.Status)
		} else {
			assert.ErrorIs(t, err, ErrInvalidStatusTransition, "%s->%s", tc.from, tc.to)
			assert.Equal(t, tc.from, o.Status)
		}
	}
}

func TestPayment_StateMachine(t *testing.T) {
	o, err := NewOrder("ORD1", 1, PaymentCard, "", sampleLines())
	require.NoError(t, err)
	p := NewPayment(o)
	assert.Equal(t, PaymentPending, p.Status)
	assert.True(t, o.Total.Equal(p.Amount))

	require.NoError(t, p.TransitionTo(PaymentFailed))
	require.NoError(t, p.TransitionTo(PaymentPaid))
	assert.ErrorIs(t, p.TransitionTo(PaymentFailed), ErrInvalidStatusTransition)
}

func TestParse(t *testing.T) {
	_, err := ParsePaymentMode("Cash")
	assert.ErrorIs(t, err, ErrInvalidPaymentMode)
	m, err := ParsePaymentMode("UPI")
	require.NoError(t, err)
	assert.Equal(t, PaymentUPI, m)

	_, err = ParseStatus("shipped")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = ParsePaymentStatus("refunded")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestGenerateOrderNo(t *testing.T) {
	a, b := GenerateOrderNo(), GenerateOrderNo()
	assert.True(t, strings.HasPrefix(a, "ORD"))
	assert.Len(t, a, 3+14+8)
	assert.NotEqual(t, a, b)
}
