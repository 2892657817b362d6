package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func hour(h, m int) time.Time {
	return time.Date(2024, 1, 1, h, m, 0, 0, time.UTC)
}

func TestInterval_Validate(t *testing.T) {
	assert.NoError(t, Interval{Start: hour(10, 0), End: hour(11, 0)}.Validate())
	assert.ErrorIs(t, Interval{Start: hour(10, 0), End: hour(10, 0)}.Validate(), ErrInvalidInterval)
	assert.ErrorIs(t, Interval{Start: hour(11, 0), End: hour(10, 0)}.Validate(), ErrInvalidInterval)
}

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{
			name: "touching boundaries do not overlap",
			a:    Interval{Start: hour(10, 0), End: hour(11, 0)},
			b:    Interval{Start: hour(11, 0), End: hour(12, 0)},
			want: false,
		},
		{
			name: "partial overlap at the end",
			a:    Interval{Start: hour(10, 0), End: hour(11, 0)},
			b:    Interval{Start: hour(10, 59), End: hour(11, 30)},
			want: true,
		},
		{
			name: "containment",
			a:    Interval{Start: hour(10, 0), End: hour(12, 0)},
			b:    Interval{Start: hour(10, 30), End: hour(10, 45)},
			want: true,
		},
		{
			name: "identical intervals",
			a:    Interval{Start: hour(10, 0), End: hour(11, 0)},
			b:    Interval{Start: hour(10, 0), End: hour(11, 0)},
			want: true,
		},
		{
			name: "disjoint",
			a:    Interval{Start: hour(8, 0), End: hour(9, 0)},
			b:    Interval{Start: hour(12, 0), End: hour(13, 0)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestInterval_Contains(t *testing.T) {
	iv := Interval{Start: hour(10, 0), End: hour(12, 0)}

	assert.True(t, iv.Contains(hour(10, 0)), "start is inclusive")
	assert.True(t, iv.Contains(hour(11, 0)))
	assert.False(t, iv.Contains(hour(12, 0)), "end is exclusive")
	assert.False(t, iv.Contains(hour(9, 59)))
}

func TestInterval_Elapsed(t *testing.T) {
	iv := Interval{Start: hour(10, 0), End: hour(12, 0)}

	assert.False(t, iv.Elapsed(hour(11, 0)))
	assert.True(t, iv.Elapsed(hour(12, 0)))
	assert.True(t, iv.Elapsed(hour(13, 0)))
}
