package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func window(startHour, endHour int) Window {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return Window{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestWindow_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a    Window
		b    Window
		want bool
	}{
		{"identical", window(10, 14), window(10, 14), true},
		{"partial overlap right", window(10, 14), window(12, 16), true},
		{"partial overlap left", window(12, 16), window(10, 14), true},
		{"contained", window(10, 16), window(12, 14), true},
		{"containing", window(12, 14), window(10, 16), true},
		{"disjoint after", window(10, 14), window(15, 16), false},
		{"disjoint before", window(15, 16), window(10, 14), false},
		{"touching at boundary", window(10, 14), window(14, 16), false},
		{"touching at boundary reversed", window(14, 16), window(10, 14), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
		})
	}
}

func TestWindow_Overlaps_Symmetric(t *testing.T) {
	a := window(9, 12)
	b := window(11, 15)
	assert.Equal(t, a.Overlaps(b), b.Overlaps(a))
}

func TestWindow_Valid(t *testing.T) {
	assert.True(t, window(10, 14).Valid())
	assert.False(t, window(14, 10).Valid())
	assert.False(t, window(10, 10).Valid())
}
