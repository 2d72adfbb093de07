package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductInput_ToModel(t *testing.T) {
	id, name, price, quantity := 3, "Cable", 4.5, 0
	input := ProductInput{ID: &id, Name: &name, Price: &price, Quantity: &quantity}

	assert.Equal(t, &Product{ID: 3, Name: "Cable", Price: 4.5}, input.ToModel())
	assert.Equal(t, &Product{}, ProductInput{}.ToModel())
}
