package log

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/zapper-tv/zapper/filesystem"
	"github.com/zapper-tv/zapper/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)
		So(Setup(), ShouldBeNil)

		Convey("Emissions are dropped silently", func() {
			So(func() { Infof("dropped %d", 1) }, ShouldNotPanic)
			So(enabled, ShouldBeFalse)
		})

		Convey("Tee force-enables output to the writer", func() {
			var buf bytes.Buffer
			Tee(&buf)
			Info("reconnecting")
			So(buf.String(), ShouldContainSubstring, "reconnecting")
			enabled = false
		})
	})

	Convey("Given logging is enabled", t, func() {
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "not-a-level")
		defer viper.Set(key.LogsWrite, false)

		Convey("Setup creates the log file", func() {
			So(Setup(), ShouldBeNil)
			So(enabled, ShouldBeTrue)
			enabled = false
		})
	})
}
