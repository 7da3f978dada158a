package source

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRecord(t *testing.T) {
	Convey("Given a record", t, func() {
		r := &Record{ID: "one-piece", Title: "One Piece", Year: 1999}

		Convey("String includes the year", func() {
			So(r.String(), ShouldEqual, "One Piece (1999)")
			r.Year = 0
			So(r.String(), ShouldEqual, "One Piece")
		})

		Convey("Episodes parses the leading number", func() {
			for raw, want := range map[string]int{"12": 12, "24 Tập": 24, "Full": 0, "": 0} {
				r.EpisodeTotal = raw
				So(r.Episodes(), ShouldEqual, want)
			}
		})

		Convey("External id zero is absent", func() {
			So(r.HasExternalID(), ShouldBeFalse)
			r.ExternalID = "0"
			So(r.HasExternalID(), ShouldBeFalse)
			r.ExternalID = "37854"
			So(r.HasExternalID(), ShouldBeTrue)
		})
	})

	Convey("KindOf classifies upstream types", t, func() {
		So(KindOf("hoathinh"), ShouldEqual, KindAnimation)
		So(KindOf("series"), ShouldEqual, KindSeries)
		So(KindOf("tvshows"), ShouldEqual, KindSeries)
		So(KindOf("single"), ShouldEqual, KindMovie)
		So(KindOf(""), ShouldEqual, KindMovie)
	})
}

func TestIsSeries(t *testing.T) {
	Convey("Series detection", t, func() {
		So(IsSeries(&Record{Type: "series"}), ShouldBeTrue)
		So(IsSeries(&Record{Type: "hoathinh", EpisodeTotal: "1"}), ShouldBeTrue)
		So(IsSeries(&Record{Type: "single", EpisodeTotal: "12"}), ShouldBeTrue)
		So(IsSeries(&Record{Type: "single", EpisodeTotal: "Full"}), ShouldBeFalse)
		So(IsSeries(&Record{Type: "single", EpisodeTotal: "1"}), ShouldBeFalse)

		So(MetadataKind(&Record{Type: "series"}), ShouldEqual, MetadataTV)
		So(MetadataKind(&Record{Type: "single"}), ShouldEqual, MetadataMovie)
	})
}

func TestIsAnime(t *testing.T) {
	Convey("Anime detection", t, func() {
		Convey("Animation type always counts", func() {
			So(IsAnime(&Record{Type: "hoathinh", Title: "Something"}), ShouldBeTrue)
		})

		Convey("A franchise keyword in the title counts", func() {
			So(IsAnime(&Record{Type: "series", Title: "Naruto Shippuden"}), ShouldBeTrue)
		})

		Convey("Country needs a matching category", func() {
			japan := []Tag{{Name: "Nhật Bản", Slug: "nhat-ban"}}
			So(IsAnime(&Record{Title: "Drive My Car", Countries: japan}), ShouldBeFalse)
			So(IsAnime(&Record{
				Title:      "Your Name",
				Countries:  japan,
				Categories: []Tag{{Name: "Viễn Tưởng", Slug: "vien-tuong"}},
			}), ShouldBeTrue)
		})

		Convey("A plain live-action record is not anime", func() {
			So(IsAnime(&Record{Title: "Sát Thủ John Wick", Type: "single"}), ShouldBeFalse)
		})
	})
}

func TestDetail(t *testing.T) {
	Convey("EpisodeCount takes the largest server", t, func() {
		d := &Detail{
			Record: &Record{ID: "x"},
			Servers: []*Server{
				{Name: "a", Episodes: []*Episode{{Name: "1"}}},
				{Name: "b", Episodes: []*Episode{{Name: "1"}, {Slug: "tap-2"}}},
			},
		}
		So(d.EpisodeCount(), ShouldEqual, 2)
		So(d.Servers[1].Episodes[1].String(), ShouldEqual, "tap-2")
	})
}

func TestUpstreamError(t *testing.T) {
	Convey("UpstreamError survives wrapping", t, func() {
		err := fmt.Errorf("list: %w", &UpstreamError{Status: 502, Endpoint: "/phim/x"})

		var upstream *UpstreamError
		So(errors.As(err, &upstream), ShouldBeTrue)
		So(upstream.Status, ShouldEqual, 502)
		So(err.Error(), ShouldContainSubstring, "status 502")
	})
}
