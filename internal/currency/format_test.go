package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbol(t *testing.T) {
	assert.Equal(t, "$", Symbol("COP"))
	assert.Equal(t, "$", Symbol("MXN"))
	assert.Equal(t, "$", Symbol("ARS"))
	assert.Equal(t, "R$", Symbol("BRL"))
	assert.Equal(t, "S/", Symbol("PEN"))
	assert.Equal(t, "€", Symbol("EUR"))
	assert.Equal(t, "$", Symbol("USD"))
	assert.Equal(t, "$", Symbol(""))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$ 1,500,000", Format(1500000, "COP"))
	assert.Equal(t, "R$ 8,500", Format(8500, "BRL"))
	assert.Equal(t, "S/ 3,200", Format(3200, "PEN"))
	assert.Equal(t, "€ 5,568", Format(5568, "EUR"))
	assert.Equal(t, "$ 28,000", Format(28000.4, "MXN"))
	assert.Equal(t, "$ 0", Format(0, "USD"))
}
