package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petflix/petflix/internal/cache"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func token(t string) func() mo.Option[string] {
	return func() mo.Option[string] {
		if t == "" {
			return mo.None[string]()
		}
		return mo.Some(t)
	}
}

func TestLookup(t *testing.T) {
	Convey("Given a provider with one movie and one show sharing an id", t, func() {
		var calls atomic.Int32
		var auth atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			auth.Store(r.Header.Get("Authorization"))
			switch r.URL.Path {
			case "/movie/10":
				_, _ = w.Write([]byte(`{"id": 10, "title": "A Movie", "poster_path": "/movie.jpg", "release_date": "2001-01-01"}`))
			case "/tv/10":
				_, _ = w.Write([]byte(`{"id": 10, "name": "A Show", "poster_path": "/show.jpg", "first_air_date": "2010-01-01"}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		store := cache.New()
		client := New(
			WithBaseURL(server.URL),
			WithHTTPClient(server.Client()),
			WithToken(token("secret")),
			WithCache(store, time.Hour),
		)
		ctx := context.Background()

		Convey("Movie and show are looked up separately", func() {
			movie, err := client.Lookup(ctx, "10", "movie")
			So(err, ShouldBeNil)
			show, err := client.Lookup(ctx, "10", "tv")
			So(err, ShouldBeNil)

			So(movie.MustGet().Title, ShouldEqual, "A Movie")
			So(movie.MustGet().PosterPath, ShouldEqual, "/movie.jpg")
			So(show.MustGet().Title, ShouldEqual, "A Show")
			So(show.MustGet().ReleaseDate, ShouldEqual, "2010-01-01")
			So(auth.Load(), ShouldEqual, "Bearer secret")

			So(store.Get(CacheKey("movie", "10")).IsPresent(), ShouldBeTrue)
			So(store.Get(CacheKey("tv", "10")).IsPresent(), ShouldBeTrue)
		})

		Convey("A repeated lookup is served from the cache", func() {
			_, _ = client.Lookup(ctx, "10", "movie")
			again, err := client.Lookup(ctx, "10", "movie")
			So(err, ShouldBeNil)
			So(again.MustGet().Title, ShouldEqual, "A Movie")
			So(calls.Load(), ShouldEqual, 1)
		})

		Convey("An unknown id is absent", func() {
			m, err := client.Lookup(ctx, "99", "movie")
			So(err, ShouldBeNil)
			So(m.IsAbsent(), ShouldBeTrue)
		})

		Convey("An empty id makes no call", func() {
			m, err := client.Lookup(ctx, "", "movie")
			So(err, ShouldBeNil)
			So(m.IsAbsent(), ShouldBeTrue)
			So(calls.Load(), ShouldEqual, 0)
		})

		Convey("A non-numeric id never reaches the provider", func() {
			for _, id := range []string{"../account", "10?x=1", "abc", "-1"} {
				m, err := client.Lookup(ctx, id, "movie")
				So(err, ShouldBeNil)
				So(m.IsAbsent(), ShouldBeTrue)
			}
			So(calls.Load(), ShouldEqual, 0)
		})
	})

	Convey("Given no credential", t, func() {
		client := New(WithBaseURL("http://127.0.0.1:0"), WithToken(token("")))

		Convey("Lookup fails permanently without a call", func() {
			_, err := client.Lookup(context.Background(), "10", "movie")
			So(errors.Is(err, ErrNoCredential), ShouldBeTrue)
		})
	})

	Convey("Given a rejected token", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()
		client := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()), WithToken(token("bad")))

		Convey("It counts as no credential", func() {
			_, err := client.Lookup(context.Background(), "10", "movie")
			So(errors.Is(err, ErrNoCredential), ShouldBeTrue)
		})
	})
}

func TestImageURL(t *testing.T) {
	Convey("ImageURL", t, func() {
		So(ImageURL("https://image.tmdb.org/t/p", "/a.jpg", PosterSize), ShouldEqual, "https://image.tmdb.org/t/p/w342/a.jpg")
		So(ImageURL("https://image.tmdb.org/t/p/", "b.jpg", BackdropSize), ShouldEqual, "https://image.tmdb.org/t/p/w780/b.jpg")
		So(ImageURL("https://image.tmdb.org/t/p", "", PosterSize), ShouldEqual, "")
	})
}
