package pagination_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/inkwell-blog/inkwell/backend/internal/pagination"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		total      int64
		wantNumber int
		wantPages  int
		wantOffset int
	}{
		{name: "missing token", token: "", total: 7, wantNumber: 1, wantPages: 3, wantOffset: 0},
		{name: "second page", token: "2", total: 7, wantNumber: 2, wantPages: 3, wantOffset: 3},
		{name: "last partial page", token: "3", total: 7, wantNumber: 3, wantPages: 3, wantOffset: 6},
		{name: "beyond last page", token: "99", total: 7, wantNumber: 3, wantPages: 3, wantOffset: 6},
		{name: "non-integer token", token: "abc", total: 7, wantNumber: 1, wantPages: 3, wantOffset: 0},
		{name: "zero", token: "0", total: 7, wantNumber: 1, wantPages: 3, wantOffset: 0},
		{name: "negative", token: "-4", total: 7, wantNumber: 1, wantPages: 3, wantOffset: 0},
		{name: "padded", token: " 2 ", total: 7, wantNumber: 2, wantPages: 3, wantOffset: 3},
		{name: "empty result set", token: "5", total: 0, wantNumber: 1, wantPages: 1, wantOffset: 0},
		{name: "exact multiple", token: "2", total: 6, wantNumber: 2, wantPages: 2, wantOffset: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			page := pagination.Resolve(tt.token, tt.total, 3)
			c.Assert(page.Number, qt.Equals, tt.wantNumber)
			c.Assert(page.NumPages, qt.Equals, tt.wantPages)
			c.Assert(page.Offset(), qt.Equals, tt.wantOffset)
			c.Assert(page.Limit(), qt.Equals, 3)
		})
	}
}

func TestResolveNeighbours(t *testing.T) {
	c := qt.New(t)

	first := pagination.Resolve("1", 9, 3)
	c.Assert(first.HasPrev, qt.IsFalse)
	c.Assert(first.HasNext, qt.IsTrue)

	last := pagination.Resolve("3", 9, 3)
	c.Assert(last.HasPrev, qt.IsTrue)
	c.Assert(last.HasNext, qt.IsFalse)
}

func TestResolveClampsPageSize(t *testing.T) {
	c := qt.New(t)

	page := pagination.Resolve("2", 2, 0)
	c.Assert(page.PerPage, qt.Equals, 1)
	c.Assert(page.NumPages, qt.Equals, 2)
}
