package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/petflix/petflix/constant"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func TestTransport(t *testing.T) {
	Convey("Given a server echoing the user agent", t, func() {
		var gotUA, gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		client := &http.Client{Transport: NewTransport(http.DefaultTransport.(*http.Transport).Clone(), nil)}

		Convey("The default user agent is applied", func() {
			resp, err := Get(context.Background(), client, srv.URL, nil)
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(gotUA, ShouldEqual, constant.UserAgent)
		})

		Convey("Caller headers are forwarded", func() {
			resp, err := Get(context.Background(), client, srv.URL, http.Header{"Authorization": {"Bearer t"}})
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(gotAuth, ShouldEqual, "Bearer t")
		})

		Convey("A limiter that cannot admit before the deadline fails the call", func() {
			limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
			limited := &http.Client{Transport: NewTransport(http.DefaultTransport.(*http.Transport).Clone(), limiter)}

			resp, err := Get(context.Background(), limited, srv.URL, nil)
			So(err, ShouldBeNil)
			resp.Body.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			_, err = Get(ctx, limited, srv.URL, nil)
			So(err, ShouldNotBeNil)
		})

		Convey("The limiter can be swapped while requests are in flight", func() {
			quiet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			defer quiet.Close()

			transport := NewTransport(http.DefaultTransport.(*http.Transport).Clone(), rate.NewLimiter(rate.Inf, 1))
			swapping := &http.Client{Transport: transport}

			var g errgroup.Group
			for range 8 {
				g.Go(func() error {
					resp, err := Get(context.Background(), swapping, quiet.URL, nil)
					if err == nil {
						resp.Body.Close()
					}
					return err
				})
			}
			for i := range 8 {
				if i%2 == 0 {
					transport.SetLimiter(nil)
				} else {
					transport.SetLimiter(rate.NewLimiter(rate.Inf, 1))
				}
			}
			So(g.Wait(), ShouldBeNil)

			transport.SetLimiter(rate.NewLimiter(rate.Every(time.Hour), 0))
			transport.SetLimiter(nil)
			resp, err := Get(context.Background(), swapping, quiet.URL, nil)
			So(err, ShouldBeNil)
			resp.Body.Close()
		})
	})
}
