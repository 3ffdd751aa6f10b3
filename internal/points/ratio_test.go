package points

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greenleafpos/points-service/internal/models"
)

func TestParseRatio(t *testing.T) {
	tests := []struct {
		name         string
		ratio        string
		wantPoints   float64
		wantMonetary float64
	}{
		{name: "one to one", ratio: "1:1", wantPoints: 1, wantMonetary: 1},
		{name: "two points per unit", ratio: "2:1", wantPoints: 2, wantMonetary: 1},
		{name: "fractional", ratio: "5:2", wantPoints: 5, wantMonetary: 2},
		{name: "garbage halves fall back to one", ratio: "abc:def", wantPoints: 1, wantMonetary: 1},
		{name: "zero halves fall back to one", ratio: "0:0", wantPoints: 1, wantMonetary: 1},
		{name: "empty string", ratio: "", wantPoints: 1, wantMonetary: 1},
		{name: "missing separator", ratio: "3", wantPoints: 3, wantMonetary: 1},
		{name: "whitespace", ratio: " 2 : 4 ", wantPoints: 2, wantMonetary: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, monetary := ParseRatio(tt.ratio)

			assert.Equal(t, tt.wantPoints, points)
			assert.Equal(t, tt.wantMonetary, monetary)
		})
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name     string
		order    *models.Order
		ratio    string
		expected int
	}{
		{
			name: "one to one",
			order: &models.Order{
				LineItems:     []models.LineItem{{Quantity: 1, Subtotal: "100.00"}},
				DiscountTotal: "0",
			},
			ratio:    "1:1",
			expected: 100,
		},
		{
			name: "discount floors at zero",
			order: &models.Order{
				LineItems:     []models.LineItem{{Quantity: 1, Subtotal: "50.00"}},
				DiscountTotal: "100",
			},
			ratio:    "1:1",
			expected: 0,
		},
		{
			name: "truncation not rounding",
			order: &models.Order{
				LineItems:     []models.LineItem{{Quantity: 1, Subtotal: "9.99"}},
				DiscountTotal: "0",
			},
			ratio:    "1:1",
			expected: 9,
		},
		{
			name: "two points per dollar",
			order: &models.Order{
				LineItems:     []models.LineItem{{Quantity: 1, Subtotal: "10.00"}},
				DiscountTotal: "0",
			},
			ratio:    "2:1",
			expected: 20,
		},
		{
			name: "one point per two dollars",
			order: &models.Order{
				LineItems:     []models.LineItem{{Quantity: 1, Subtotal: "10.00"}},
				DiscountTotal: "0",
			},
			ratio:    "1:2",
			expected: 5,
		},
		{
			name: "multiple lines sum",
			order: &models.Order{
				LineItems: []models.LineItem{
					{Quantity: 2, Subtotal: "30.00"},
					{Quantity: 3, Subtotal: "45.50"},
				},
				DiscountTotal: "0",
			},
			ratio:    "1:1",
			expected: 75,
		},
		{
			name: "discount reduces points",
			order: &models.Order{
				LineItems:     []models.LineItem{{Quantity: 1, Subtotal: "100.00"}},
				DiscountTotal: "15.50",
			},
			ratio:    "1:1",
			expected: 84,
		},
		{
			name: "zero quantity line yields zero points",
			order: &models.Order{
				LineItems:     []models.LineItem{{Quantity: 0, Subtotal: "100.00"}},
				DiscountTotal: "0",
			},
			ratio:    "1:1",
			expected: 0,
		},
		{
			name: "unparseable subtotal counts as zero",
			order: &models.Order{
				LineItems: []models.LineItem{
					{Quantity: 1, Subtotal: "n/a"},
					{Quantity: 1, Subtotal: "25.00"},
				},
				DiscountTotal: "0",
			},
			ratio:    "1:1",
			expected: 25,
		},
		{
			name: "unparseable discount counts as zero",
			order: &models.Order{
				LineItems:     []models.LineItem{{Quantity: 1, Subtotal: "25.00"}},
				DiscountTotal: "free",
			},
			ratio:    "1:1",
			expected: 25,
		},
		{
			name: "malformed ratio behaves as one to one",
			order: &models.Order{
				LineItems:     []models.LineItem{{Quantity: 1, Subtotal: "42.00"}},
				DiscountTotal: "0",
			},
			ratio:    "not-a-ratio",
			expected: 42,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Calculate(tt.order, tt.ratio))
		})
	}
}

func TestPriorPoints(t *testing.T) {
	assert.Equal(t, 150, priorPoints("150"))
	assert.Equal(t, 12, priorPoints("12.5"))
	assert.Equal(t, 0, priorPoints("lots"))
	assert.Equal(t, 0, priorPoints(""))
}
