package version

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Given two versions", t, func() {
		Convey("Newer, older and equal are told apart", func() {
			So(must(Compare("0.37.0", "0.33.0")), ShouldEqual, 1)
			So(must(Compare("v0.32.9", "0.33.0")), ShouldEqual, -1)
			So(must(Compare("1.0.0", "v1.0.0")), ShouldEqual, 0)
		})

		Convey("Malformed versions are rejected", func() {
			_, err := Compare("latest", "0.33.0")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given mpv banners", t, func() {
		Convey("Release builds are read", func() {
			v, err := Parse("mpv v0.37.0 Copyright © 2000-2023 mpv/MPlayer/mplayer2 projects\n built on ...")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "0.37.0")
		})

		Convey("Old banners without the v prefix are read", func() {
			v, err := Parse("mpv 0.32.0 Copyright © 2000-2020")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "0.32.0")

			ok, err := Supported(v)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("Git builds without a release number are unknown", func() {
			_, err := Parse("mpv git-2f4a1e9 Copyright")
			So(err, ShouldEqual, ErrUnknownVersion)
		})
	})
}

func must(v int, err error) int {
	So(err, ShouldBeNil)
	return v
}
