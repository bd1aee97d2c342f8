package normalize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  any
		want *int
	}{
		{"plain", "7", Ptr(7)},
		{"plus sign", "+7", Ptr(7)},
		{"negative", "-7", Ptr(-7)},
		{"surrounding whitespace", "  42 \n", Ptr(42)},
		{"slash separators", "/ 14 /", Ptr(14)},
		{"percent", "33%", Ptr(33)},
		{"empty", "", nil},
		{"only separators", " / ", nil},
		{"nil", nil, nil},
		{"letters", "abc", nil},
		{"decimal is not int", "1.5", nil},
		{"double minus", "--3", nil},
		{"plus then minus", "+-3", Ptr(-3)},
		{"typed int", 12, Ptr(12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Int(tt.raw, nil))
		})
	}
}

func TestIntDefault(t *testing.T) {
	t.Parallel()

	def := Ptr(-1)
	assert.Equal(t, def, Int("n/a", def))
	assert.Equal(t, Ptr(0), Int("0", def))
}

func TestIntRoundTripsDigits(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, -1, 9, 10, 255, -3000, 123456789} {
		got := Int(fmt.Sprintf("%d", n), nil)
		require.NotNil(t, got, "input %d", n)
		assert.Equal(t, n, *got)
	}
}

func TestFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  any
		want *float64
	}{
		{"percent", "45%", Ptr(45.0)},
		{"decimal", "1.23", Ptr(1.23)},
		{"leading dot", ".5", Ptr(0.5)},
		{"negative leading dot", "-.25", Ptr(-0.25)},
		{"plus sign", "+0.9", Ptr(0.9)},
		{"zero percent", "0%", Ptr(0.0)},
		{"integer", "12", Ptr(12.0)},
		{"two dots", "1.2.3", nil},
		{"empty", "  ", nil},
		{"text", "N/A", nil},
		{"exponent is rejected", "1e5", nil},
		{"typed float", 2.5, Ptr(2.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Float(tt.raw, nil))
		})
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Ptr("Sentinels"), String("  Sentinels\t", nil))
	assert.Equal(t, Ptr("x"), String("/x/", nil))
	assert.Nil(t, String("   ", nil))
	assert.Nil(t, String(nil, nil))
	assert.Equal(t, Ptr("fallback"), String("%", Ptr("fallback")))
}

func TestNeverPanics(t *testing.T) {
	t.Parallel()

	inputs := []any{nil, "", "%%%", "////", "+", "-", ".", "-.", struct{}{}, []byte("3"), (*string)(nil), (*int)(nil)}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			_ = Int(in, nil)
			_ = Float(in, nil)
			_ = String(in, nil)
		})
	}
}
