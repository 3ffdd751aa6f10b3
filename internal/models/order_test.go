package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrder_Meta_FirstMatchWins(t *testing.T) {
	order := &Order{
		MetaData: []MetaEntry{
			{Key: "_wc_points_earned", Value: "100"},
			{Key: "_wc_points_earned", Value: "999"},
			{Key: "_pos_terminal", Value: "front"},
		},
	}

	value, ok := order.Meta("_wc_points_earned")
	assert.True(t, ok)
	assert.Equal(t, "100", value)
}

func TestOrder_Meta_Missing(t *testing.T) {
	order := &Order{}

	value, ok := order.Meta("_wc_points_earned")
	assert.False(t, ok)
	assert.Equal(t, "", value)
}
