package history

import (
	"errors"
	"testing"
	"time"

	"github.com/petflix/petflix/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func newTestStore(name string) *FileStore {
	path := "/config/petflix/" + name + ".json"
	_ = filesystem.API().Remove(path)

	store := NewFileStore(path)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return store
}

func TestFileStore(t *testing.T) {
	Convey("Given an empty progress store", t, func() {
		store := newTestStore(t.Name())

		Convey("Missing ids are rejected", func() {
			err := store.SaveProgress("", "naruto", "tap-1", Progress{})
			So(errors.Is(err, ErrMissingField), ShouldBeTrue)
		})

		Convey("When progress is saved for two items", func() {
			So(store.SaveProgress("u1", "naruto", "tap-1", Progress{CurrentTime: 600, Duration: 1200, Title: "Naruto"}), ShouldBeNil)
			So(store.SaveProgress("u1", "bleach", "tap-3", Progress{HasEmbed: true, Title: "Bleach"}), ShouldBeNil)

			Convey("They are listed most recent first", func() {
				entries, err := store.List("u1")
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
				So(entries[0].ItemID, ShouldEqual, "bleach")
				So(entries[1].WatchedPercentage, ShouldEqual, 50)
			})

			Convey("Other users see nothing", func() {
				entries, err := store.List("u2")
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})

			Convey("Re-watching an episode keeps the furthest point", func() {
				So(store.SaveProgress("u1", "naruto", "tap-1", Progress{CurrentTime: 60, Duration: 1200}), ShouldBeNil)
				entries, _ := store.List("u1")
				So(entries[0].ItemID, ShouldEqual, "naruto")
				So(entries[0].WatchedPercentage, ShouldEqual, 50)
			})

			Convey("A new episode replaces the item's progress", func() {
				So(store.SaveProgress("u1", "naruto", "tap-2", Progress{CurrentTime: 60, Duration: 1200}), ShouldBeNil)
				entries, _ := store.List("u1")
				So(entries[0].EpisodeID, ShouldEqual, "tap-2")
				So(entries[0].WatchedPercentage, ShouldEqual, 5)
			})

			Convey("Delete removes one item", func() {
				So(store.Delete("u1", "naruto"), ShouldBeNil)
				So(store.Delete("u1", "unknown"), ShouldBeNil)
				entries, _ := store.List("u1")
				So(entries, ShouldHaveLength, 1)
			})

			Convey("Clear removes everything", func() {
				So(store.Clear("u1"), ShouldBeNil)
				entries, _ := store.List("u1")
				So(entries, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a subscriber", t, func() {
		store := newTestStore(t.Name() + "-subscriber")

		var snapshots [][]*Entry
		cancel := store.Subscribe("u1", func(entries []*Entry) {
			snapshots = append(snapshots, entries)
		})

		Convey("It receives the initial snapshot and every change", func() {
			So(snapshots, ShouldHaveLength, 1)
			So(snapshots[0], ShouldBeEmpty)

			So(store.SaveProgress("u1", "naruto", "tap-1", Progress{}), ShouldBeNil)
			So(store.SaveProgress("u2", "naruto", "tap-1", Progress{}), ShouldBeNil)
			So(snapshots, ShouldHaveLength, 2)
			So(snapshots[1][0].ItemID, ShouldEqual, "naruto")

			Convey("and nothing after cancelling", func() {
				cancel()
				cancel()
				So(store.Clear("u1"), ShouldBeNil)
				So(snapshots, ShouldHaveLength, 2)
			})
		})
	})
}

func TestProgress(t *testing.T) {
	Convey("Percentage", t, func() {
		So(Progress{CurrentTime: 30, Duration: 120}.Percentage(), ShouldEqual, 25)
		So(Progress{CurrentTime: 30}.Percentage(), ShouldEqual, 0)
		So(Progress{CurrentTime: 200, Duration: 100}.Percentage(), ShouldEqual, 100)
	})
}
