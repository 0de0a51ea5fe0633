package pagination

import "testing"

func TestNormalizeClampsInputs(t *testing.T) {
	tests := []struct {
		in     Params
		page   int
		limit  int
		offset int
	}{
		{Params{}, 1, DefaultLimit, 0},
		{Params{Page: -3, Limit: -1}, 1, DefaultLimit, 0},
		{Params{Page: 2, Limit: 10}, 2, 10, 10},
		{Params{Page: 4, Limit: 1000}, 4, MaxLimit, 300},
	}

	for _, tt := range tests {
		n := tt.in.Normalize()
		if n.Page != tt.page || n.Limit != tt.limit {
			t.Fatalf("Normalize(%+v) = %+v, want page=%d limit=%d", tt.in, n, tt.page, tt.limit)
		}
		if got := tt.in.Offset(); got != tt.offset {
			t.Fatalf("Offset(%+v) = %d, want %d", tt.in, got, tt.offset)
		}
	}
}

func TestNewPageComputesTotals(t *testing.T) {
	page := NewPage([]string{"a", "b"}, Params{Page: 1, Limit: 2}, 5)
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", page.TotalPages)
	}
	if page.Total != 5 {
		t.Fatalf("expected total 5, got %d", page.Total)
	}

	empty := NewPage[string](nil, Params{}, 0)
	if empty.Items == nil {
		t.Fatal("items must serialize as an empty array, not null")
	}
	if empty.TotalPages != 0 {
		t.Fatalf("expected 0 total pages, got %d", empty.TotalPages)
	}
}
