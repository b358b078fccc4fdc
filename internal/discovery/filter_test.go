package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_FilterByName(t *testing.T) {
	filter := NewFilter()
	names := []string{"uart_smoke", "uart_stress", "spi_smoke", "spi_basic"}

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"empty pattern returns all", "", names},
		{"prefix wildcard", "uart_*", []string{"uart_smoke", "uart_stress"}},
		{"substring wildcard", "*smoke*", []string{"uart_smoke", "spi_smoke"}},
		{"ordered fragments", "*spi*smoke", []string{"spi_smoke"}},
		{"simple contains match", "basic", []string{"spi_basic"}},
		{"single char wildcard", "spi_?asic", []string{"spi_basic"}},
		{"no matches", "*dma*", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filter.FilterByName(names, tt.pattern))
		})
	}
}

func TestFilter_FilterByName_Paths(t *testing.T) {
	filter := NewFilter()

	got := filter.FilterByName([]string{"/tests/uart/uart_smoke", "/tests/spi/spi_basic"}, "uart*")
	assert.Equal(t, []string{"/tests/uart/uart_smoke"}, got)

	assert.Empty(t, filter.FilterByName([]string{}, "*"))
}
