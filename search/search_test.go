package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/petflix/petflix/source"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeSource struct {
	mu       sync.Mutex
	searches map[string]map[int][]*source.Record
	latest   map[int][]*source.Record
	failing  map[string]bool
	slow     map[string]map[int]bool
	calls    int
	listings int
}

func (f *fakeSource) ListPage(ctx context.Context, page int, category string) (*source.Page, error) {
	f.mu.Lock()
	f.calls++
	f.listings++
	f.mu.Unlock()
	if f.failing["latest"] {
		return nil, &source.UpstreamError{Status: 500, Endpoint: "latest"}
	}
	return &source.Page{Records: f.latest[page]}, nil
}

func (f *fakeSource) Detail(context.Context, string) (*source.Detail, error) {
	return nil, source.ErrNotFound
}

func (f *fakeSource) Search(ctx context.Context, keyword string, page, limit int) (*source.Page, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.failing[keyword] || f.failing["*"] {
		return nil, &source.UpstreamError{Status: 502, Endpoint: "search"}
	}
	if f.slow[keyword][page] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return &source.Page{Records: f.searches[keyword][page]}, nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func rec(id, title string) *source.Record {
	return &source.Record{ID: id, Title: title}
}

func testConfig() Config {
	c := DefaultConfig()
	c.DirectPages = 2
	c.TokenPages = 1
	c.SynonymPages = 1
	c.LatestPages = 2
	c.CategoryPages = 1
	c.Timeout = 50 * time.Millisecond
	return c
}

func ids(r *Result) []string {
	return lo.Map(r.Hits, func(h Hit, _ int) string { return h.Record.ID })
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	Convey("Given overlapping strategy outputs", t, func() {
		src := &fakeSource{searches: map[string]map[int][]*source.Record{
			"dark knight": {1: {rec("tdk", "The Dark Knight"), rec("dk2", "Dark Knight Rises")}},
			"dark":        {1: {rec("dark", "Dark"), rec("tdk", "The Dark Knight")}},
			"knight":      {1: {rec("kn", "Knight and Day"), rec("dk2", "Dark Knight Rises")}},
		}}
		engine := New(src, testConfig(), Synonyms{})

		result, err := engine.Search(ctx, "dark knight")
		So(err, ShouldBeNil)

		Convey("Every id appears once", func() {
			So(ids(result), ShouldHaveLength, len(lo.Uniq(ids(result))))
			So(ids(result), ShouldHaveLength, 4)
		})

		Convey("Scores never increase down the list", func() {
			for i := 1; i < len(result.Hits); i++ {
				So(result.Hits[i-1].Score, ShouldBeGreaterThanOrEqualTo, result.Hits[i].Score)
			}
			So(result.Hits[0].Record.ID, ShouldEqual, "tdk")
		})

		Convey("The latest feed is not scanned", func() {
			So(src.listings, ShouldEqual, 0)
		})
	})

	Convey("Given a keyword found only through its synonyms", t, func() {
		src := &fakeSource{searches: map[string]map[int][]*source.Record{
			"hành động": {1: {rec("hd1", "Hành Động Mỹ")}},
			"hanh dong": {1: {rec("hd2", "Hanh Dong Ha Noi")}},
		}}
		engine := New(src, testConfig(), DefaultSynonyms())

		result, err := engine.Search(ctx, "action")

		Convey("The synonym hits are returned below an exact title score", func() {
			So(err, ShouldBeNil)
			So(ids(result), ShouldResemble, []string{"hd1", "hd2"})
			for _, h := range result.Hits {
				So(h.Score, ShouldBeLessThan, DefaultWeights.TitleExact)
			}
		})

		Convey("An exact title match ranks above them", func() {
			src.searches["action"] = map[int][]*source.Record{2: {rec("am", "Action Man")}}
			result, err := engine.Search(ctx, "action")
			So(err, ShouldBeNil)
			So(ids(result), ShouldResemble, []string{"am", "hd1", "hd2"})
		})
	})

	Convey("Given nothing found by any search", t, func() {
		src := &fakeSource{
			searches: map[string]map[int][]*source.Record{},
			latest: map[int][]*source.Record{
				1: {rec("x", "Unrelated")},
				2: {{ID: "y", Title: "Something", Description: "a story about naruto"}},
			},
		}
		engine := New(src, testConfig(), Synonyms{})

		Convey("The latest feed is filtered locally", func() {
			result, err := engine.Search(ctx, "naruto")
			So(err, ShouldBeNil)
			So(ids(result), ShouldResemble, []string{"y"})
			So(result.Hits[0].Score, ShouldEqual, DefaultWeights.DescriptionExact)
		})

		Convey("No match at all is an empty result, not an error", func() {
			result, err := engine.Search(ctx, "zzz")
			So(err, ShouldBeNil)
			So(result.Hits, ShouldBeEmpty)
		})
	})

	Convey("Given an upstream that fails everything", t, func() {
		src := &fakeSource{failing: map[string]bool{"*": true, "latest": true}}
		engine := New(src, testConfig(), DefaultSynonyms())

		Convey("Total failure is surfaced", func() {
			_, err := engine.Search(ctx, "sát thủ")
			So(errors.Is(err, ErrAllStrategiesFailed), ShouldBeTrue)

			var upstream *source.UpstreamError
			So(errors.As(err, &upstream), ShouldBeTrue)
		})
	})

	Convey("Given one failing strategy", t, func() {
		src := &fakeSource{
			searches: map[string]map[int][]*source.Record{"ninja": {1: {rec("n", "Ninja Scroll")}}},
			failing:  map[string]bool{"naruto": true},
		}
		engine := New(src, testConfig(), Synonyms{"naruto": {"ninja"}})

		Convey("The others still produce results", func() {
			result, err := engine.Search(ctx, "naruto")
			So(err, ShouldBeNil)
			So(ids(result), ShouldResemble, []string{"n"})
		})
	})

	Convey("Given a page that times out", t, func() {
		records := map[int][]*source.Record{1: {rec("a", "Alien"), rec("b", "Aliens")}}
		slow := &fakeSource{
			searches: map[string]map[int][]*source.Record{"alien": records},
			slow:     map[string]map[int]bool{"alien": {2: true}},
		}
		empty := &fakeSource{
			searches: map[string]map[int][]*source.Record{"alien": {1: records[1], 2: {}}},
		}

		Convey("It merges exactly like an empty page", func() {
			timedOut, err := New(slow, testConfig(), Synonyms{}).Search(ctx, "alien")
			So(err, ShouldBeNil)
			blank, err := New(empty, testConfig(), Synonyms{}).Search(ctx, "alien")
			So(err, ShouldBeNil)
			So(timedOut.Hits, ShouldResemble, blank.Hits)
		})
	})

	Convey("Given an anime scope", t, func() {
		src := &fakeSource{
			searches: map[string]map[int][]*source.Record{
				"titan": {1: {
					{ID: "aot", Title: "Attack on Titan", Type: "hoathinh"},
					{ID: "clash", Title: "Clash of the Titans", Type: "single"},
				}},
			},
			latest: map[int][]*source.Record{1: {{ID: "aot-movie", Title: "Titan Movie", Type: "hoathinh"}}},
		}
		engine := New(src, testConfig(), Synonyms{})

		Convey("Only accepted records survive", func() {
			result, err := engine.SearchScoped(ctx, "titan", Scope{Category: "hoat-hinh", Filter: source.IsAnime})
			So(err, ShouldBeNil)
			So(ids(result), ShouldResemble, []string{"aot-movie", "aot"})
		})
	})

	Convey("Given an empty keyword", t, func() {
		src := &fakeSource{}
		result, err := New(src, testConfig(), Synonyms{}).Search(ctx, "   ")

		Convey("Nothing is requested", func() {
			So(err, ShouldBeNil)
			So(result.Hits, ShouldBeEmpty)
			So(src.Calls(), ShouldEqual, 0)
		})
	})
}

func TestQuery(t *testing.T) {
	Convey("Tokens keep words longer than two characters", t, func() {
		So(Tokenize("the lord of the rings"), ShouldResemble, []string{"the", "lord", "the", "rings"})
		So(Tokenize("x y"), ShouldBeEmpty)
		So(Tokenize("ma lai"), ShouldResemble, []string{"lai"})
	})

	Convey("Synonyms are looked up case-insensitively", t, func() {
		s := DefaultSynonyms()
		So(s.Lookup("Sát Thủ"), ShouldContain, "john wick")
		So(s.Lookup("  ACTION "), ShouldContain, "hành động")
		So(s.Lookup("nothing here"), ShouldBeEmpty)
	})

	Convey("Terms are unique and lowercased", t, func() {
		q := NewQuery("Ma Lai", Synonyms{"ma lai": {"Zombie", "lai"}}, Scope{})
		So(q.Terms(), ShouldResemble, []string{"ma lai", "lai", "zombie"})
	})
}

func TestWeights(t *testing.T) {
	Convey("Scores follow the baseline weights", t, func() {
		q := NewQuery("dark knight", Synonyms{"dark knight": {"batman"}}, Scope{})

		r := &source.Record{Title: "The Dark Knight", OriginalTitle: "Batman", Description: "dark knight returns", Year: 2021}
		// title: exact 100 + two tokens 100, original title: alternate 30, the better title counts
		// description exact 20 + two tokens 20 + recent 5 + modern 2
		So(DefaultWeights.Score(r, q), ShouldEqual, 247)

		old := &source.Record{Title: "Knight", Year: 2016}
		So(DefaultWeights.Score(old, q), ShouldEqual, 52)
	})

	Convey("A keyword never matches across the two titles", t, func() {
		q := NewQuery("dark knight", Synonyms{}, Scope{})
		r := &source.Record{Title: "Dark", OriginalTitle: "Knight Rises"}
		So(DefaultWeights.Score(r, q), ShouldEqual, 50)

		original := &source.Record{Title: "Kỵ Sĩ Bóng Đêm", OriginalTitle: "The Dark Knight"}
		So(DefaultWeights.Score(original, q), ShouldEqual, 200)
	})

	Convey("Ties keep their input order", t, func() {
		q := NewQuery("zzz", Synonyms{}, Scope{})
		records := []*source.Record{rec("1", "a"), rec("2", "b"), rec("3", "c")}
		hits := DefaultWeights.Rank(records, q)
		So(lo.Map(hits, func(h Hit, _ int) string { return h.Record.ID }), ShouldResemble, []string{"1", "2", "3"})
	})
}
