package paginate

import (
	"errors"
	"testing"

	"github.com/petflix/petflix/source"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func reported(totalPages, totalItems int) mo.Option[source.Pagination] {
	return mo.Some(source.Pagination{TotalPages: totalPages, TotalItems: totalItems})
}

func TestFromUpstream(t *testing.T) {
	Convey("Given an upstream report", t, func() {
		Convey("A plausible total is trusted", func() {
			v := FromUpstream(3, 64, 64, reported(120, 7680))
			So(v.TotalPages, ShouldEqual, 120)
			So(v.TotalItems, ShouldEqual, 7680)
			So(v.Estimated, ShouldBeFalse)
		})

		Convey("A single page claim on a full page is replaced by an estimate", func() {
			v := FromUpstream(1, 64, 64, reported(1, 64))
			So(v.TotalPages, ShouldBeGreaterThanOrEqualTo, 50)
			So(v.TotalPages, ShouldEqual, 50)
			So(v.TotalItems, ShouldEqual, 50*64)
			So(v.Estimated, ShouldBeTrue)
		})

		Convey("The estimate reaches past deep pages", func() {
			v := FromUpstream(45, 64, 64, reported(1, 0))
			So(v.TotalPages, ShouldEqual, 55)
		})

		Convey("A single page that is not full is trusted", func() {
			v := FromUpstream(1, 12, 64, reported(1, 12))
			So(v.TotalPages, ShouldEqual, 1)
			So(v.HasNext(), ShouldBeFalse)
		})

		Convey("The total is never below the current page", func() {
			v := FromUpstream(9, 20, 64, reported(4, 0))
			So(v.TotalPages, ShouldEqual, 9)
			So(v.TotalItems, ShouldEqual, 20)
		})
	})

	Convey("Given no upstream report", t, func() {
		none := mo.None[source.Pagination]()

		Convey("A full page is estimated", func() {
			v := FromUpstream(2, 64, 64, none)
			So(v.TotalPages, ShouldEqual, 50)
			So(v.Estimated, ShouldBeTrue)
		})

		Convey("A short page past the first is the last", func() {
			v := FromUpstream(7, 10, 64, none)
			So(v.TotalPages, ShouldEqual, 7)
			So(v.HasNext(), ShouldBeFalse)
			So(v.HasPrev(), ShouldBeTrue)
		})

		Convey("A short first page is still estimated", func() {
			v := FromUpstream(1, 10, 64, none)
			So(v.TotalPages, ShouldEqual, 50)
		})
	})
}

func TestWindow(t *testing.T) {
	Convey("Given 130 items in pages of 64", t, func() {
		items := make([]int, 130)
		for i := range items {
			items[i] = i
		}

		Convey("Pages are exact", func() {
			page, v := Window(items, 3, 64)
			So(page, ShouldResemble, []int{128, 129})
			So(v.TotalPages, ShouldEqual, 3)
			So(v.TotalItems, ShouldEqual, 130)
			So(v.Estimated, ShouldBeFalse)

			first, _ := Window(items, 1, 64)
			So(first, ShouldHaveLength, 64)
			So(first[63], ShouldEqual, 63)
		})

		Convey("Out of range pages are empty", func() {
			page, _ := Window(items, 4, 64)
			So(page, ShouldBeEmpty)
			page, _ = Window(items, 0, 64)
			So(page, ShouldBeEmpty)
		})
	})

	Convey("An empty set still has one page", t, func() {
		page, v := Window([]string{}, 1, 64)
		So(page, ShouldBeEmpty)
		So(v.TotalPages, ShouldEqual, 1)
		So(v.Contains(1), ShouldBeTrue)
		So(v.Contains(2), ShouldBeFalse)
	})
}

func TestGuard(t *testing.T) {
	Convey("Given the default guard", t, func() {
		g := Guard{MaxDelta: DefaultMaxDelta}

		Convey("Neighbouring pages are allowed", func() {
			So(g.Check(1, 2), ShouldBeNil)
			So(g.Check(1, 3), ShouldBeNil)
			So(g.Check(5, 3), ShouldBeNil)
		})

		Convey("Jumping from page 1 to page 10 is rejected", func() {
			err := g.Check(1, 10)
			So(errors.Is(err, ErrPageJump), ShouldBeTrue)

			var jump *JumpError
			So(errors.As(err, &jump), ShouldBeTrue)
			So(jump.From, ShouldEqual, 1)
			So(jump.To, ShouldEqual, 10)
		})

		Convey("Pages below one are invalid", func() {
			So(errors.Is(g.Check(1, 0), source.ErrInvalidPage), ShouldBeTrue)
		})
	})

	Convey("A non-positive delta disables the limit", t, func() {
		So(Guard{}.Check(1, 100), ShouldBeNil)
	})
}

func TestNumbers(t *testing.T) {
	Convey("Page strips", t, func() {
		So(Numbers(1, 1, 2), ShouldResemble, []int{1})
		So(Numbers(2, 5, 2), ShouldResemble, []int{1, 2, 3, 4, 5})
		So(Numbers(1, 5, 2), ShouldResemble, []int{1, 2, 3, Ellipsis, 5})
		So(Numbers(1, 50, 2), ShouldResemble, []int{1, 2, 3, Ellipsis, 50})
		So(Numbers(10, 50, 2), ShouldResemble, []int{1, Ellipsis, 8, 9, 10, 11, 12, Ellipsis, 50})
		So(Numbers(50, 50, 2), ShouldResemble, []int{1, Ellipsis, 48, 49, 50})
		So(Numbers(1, 0, 2), ShouldBeNil)
	})
}
