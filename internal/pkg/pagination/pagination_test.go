package pagination

import (
	"errors"
	"testing"
	"time"
)

func TestCursor_RoundTrip(t *testing.T) {
	c := &Cursor{ID: "a1", CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	got, err := DecodeCursor(c.Encode())
	if err != nil {
		t.Fatalf("DecodeCursor: %v", err)
	}
	if got.ID != c.ID || !got.CreatedAt.Equal(c.CreatedAt) {
		t.Errorf("got %+v, want %+v", got, c)
	}
	if (*Cursor)(nil).Encode() != "" {
		t.Error("nil cursor must encode to empty string")
	}
}

func TestDecodeCursor(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		wantErr error
	}{
		{"empty is first page", "", nil},
		{"not base64", "!!!", ErrInvalidCursor},
		{"not json", "bm90LWpzb24", ErrInvalidCursor},
		{"missing fields", (&Cursor{ID: "x"}).Encode(), ErrInvalidCursor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCursor(tt.encoded)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{1, 1},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
		{500, MaxLimit},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if FetchLimit(10) != 11 {
		t.Errorf("FetchLimit(10) = %d", FetchLimit(10))
	}
}

func TestBuildPage(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cursorOf := func(i int) *Cursor {
		return &Cursor{ID: string(rune('a' + i)), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
	}

	page := BuildPage([]int{0, 1, 2}, 2, cursorOf)
	if !page.HasMore || len(page.Items) != 2 {
		t.Fatalf("page = %+v", page)
	}
	next, err := DecodeCursor(page.NextCursor)
	if err != nil || next.ID != "b" {
		t.Errorf("next cursor = %+v, %v", next, err)
	}

	last := BuildPage([]int{0, 1}, 2, cursorOf)
	if last.HasMore || last.NextCursor != "" {
		t.Errorf("last page = %+v", last)
	}

	empty := BuildPage[int](nil, 2, cursorOf)
	if empty.Items == nil || len(empty.Items) != 0 {
		t.Errorf("empty page items = %#v", empty.Items)
	}
}
