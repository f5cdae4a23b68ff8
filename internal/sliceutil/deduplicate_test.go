package sliceutil

import (
	"slices"
	"testing"
)

type item struct {
	code string
	name string
}

func TestUniqueBy(t *testing.T) {
	t.Parallel()

	byCode := func(i item) string { return i.code }

	tests := []struct {
		name  string
		input []item
		want  []item
	}{
		{"nil", nil, nil},
		{"empty", []item{}, []item{}},
		{"no duplicates", []item{{"G001", "a"}, {"G002", "b"}}, []item{{"G001", "a"}, {"G002", "b"}}},
		{"keeps first", []item{{"G001", "a"}, {"G002", "b"}, {"G001", "c"}}, []item{{"G001", "a"}, {"G002", "b"}}},
		{"drops zero keys", []item{{"", "a"}, {"G001", "b"}, {"", "c"}}, []item{{"G001", "b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := UniqueBy(tt.input, byCode)
			if !slices.Equal(got, tt.want) {
				t.Errorf("UniqueBy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUniqueByIntKeys(t *testing.T) {
	t.Parallel()

	got := UniqueBy([]int{3, 1, 3, 0, 2, 1}, func(n int) int { return n })
	if want := []int{3, 1, 2}; !slices.Equal(got, want) {
		t.Errorf("UniqueBy() = %v, want %v", got, want)
	}
}
