package config

import (
	"testing"
	"time"

	"github.com/petflix/petflix/filesystem"
	"github.com/petflix/petflix/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("search.weights.title_exact"), ShouldEqual, "search_weights_title_exact")
		})

		Convey("Env should carry the application prefix once", func() {
			f := Default[key.CatalogBaseURL]
			So(f.Env(), ShouldEqual, "PETFLIX_CATALOG_BASE_URL")
		})
	})
}

func TestDurations(t *testing.T) {
	Convey("Given integer duration keys", t, func() {
		_ = Setup()

		Convey("Minutes converts TTL classes", func() {
			So(Minutes(key.CacheTTLShort), ShouldEqual, 10*time.Minute)
			So(Minutes(key.CacheTTLLong), ShouldEqual, 24*time.Hour)
		})

		Convey("Timeout falls back to eight seconds when unset", func() {
			viper.Set(key.CatalogTimeout, 0)
			So(Timeout(), ShouldEqual, 8*time.Second)
			viper.Set(key.CatalogTimeout, 3)
			So(Timeout(), ShouldEqual, 3*time.Second)
			viper.Set(key.CatalogTimeout, Default[key.CatalogTimeout].Value)
		})
	})
}
