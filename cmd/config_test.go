package cmd

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zapper-tv/zapper/config"
	"github.com/zapper-tv/zapper/filesystem"
	"github.com/zapper-tv/zapper/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestParseValue(t *testing.T) {
	Convey("Given settings of every type", t, func() {
		Convey("Whole numbers are parsed for int settings", func() {
			v, err := parseValue(config.Default[key.ReconnectMaxAttempts], []string{"10"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 10)

			_, err = parseValue(config.Default[key.HealthInterval], []string{"ten"})
			So(err, ShouldNotBeNil)

			_, err = parseValue(config.Default[key.HealthInterval], []string{"-1"})
			So(err, ShouldNotBeNil)
		})

		Convey("Booleans are parsed for switches", func() {
			v, err := parseValue(config.Default[key.SearchFuzzy], []string{"true"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, true)

			_, err = parseValue(config.Default[key.SearchFuzzy], []string{"maybe"})
			So(err, ShouldNotBeNil)
		})

		Convey("Lists keep every word", func() {
			v, err := parseValue(config.Default[key.PlayerArgs], []string{"--fs", "--mute=yes"})
			So(err, ShouldBeNil)
			So(v, ShouldResemble, []string{"--fs", "--mute=yes"})
		})

		Convey("Strings take the first word", func() {
			v, err := parseValue(config.Default[key.ReconnectProbeURL], []string{"https://example.com/"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "https://example.com/")
		})

		Convey("A value is required", func() {
			_, err := parseValue(config.Default[key.Player], nil)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestClosestKey(t *testing.T) {
	Convey("A mistyped key suggests the nearest one", t, func() {
		So(closestKey("reconect.delay"), ShouldEqual, key.ReconnectDelay)
		So(closestKey("health.intervall"), ShouldEqual, key.HealthInterval)
		So(errUnknownKey("helth.interval").Error(), ShouldContainSubstring, key.HealthInterval)
	})
}
