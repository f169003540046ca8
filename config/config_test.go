package config

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/zapper-tv/zapper/filesystem"
	"github.com/zapper-tv/zapper/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without a config file", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			So(Setup(), ShouldBeNil)
			for name := range Default {
				So(viper.IsSet(name), ShouldBeTrue)
			}
			So(viper.GetInt(key.ReconnectMaxAttempts), ShouldEqual, 0)
			So(viper.GetString(key.ReconnectProbeURL), ShouldStartWith, "https://")
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("reconnect.probe_url"), ShouldEqual, "reconnect_probe_url")
		})

		Convey("Env names carry the application prefix", func() {
			field := Default[key.HealthInterval]
			So(field.Env(), ShouldEqual, "ZAPPER_HEALTH_INTERVAL")
		})
	})
}

func TestDurations(t *testing.T) {
	Convey("Given integer duration keys", t, func() {
		So(Setup(), ShouldBeNil)

		Convey("Seconds and Millis scale the stored value", func() {
			viper.Set(key.HealthInterval, 10)
			viper.Set(key.LoadingTick, 100)
			So(Seconds(key.HealthInterval), ShouldEqual, 10*time.Second)
			So(Millis(key.LoadingTick), ShouldEqual, 100*time.Millisecond)
		})
	})
}
