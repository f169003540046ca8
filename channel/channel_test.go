package channel

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/zapper-tv/zapper/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func sampleRegistry() *Registry {
	return NewRegistry(
		New("BBC One", "https://example.com/bbc1.m3u8", "News", TypeOther, nil),
		New("Sky Sports", "https://example.com/sky.mpd", "Sports", TypeMPD, &DRM{Scheme: "clearkey", Keys: map[string]string{"aa": "bb"}}),
		New("CNN", "https://example.com/cnn.m3u8", "News", TypeOther, &DRM{Scheme: "clearkey"}),
		New("Eurosport", "https://example.com/euro.m3u8", "Sports", TypeOther, nil),
	)
}

func TestType(t *testing.T) {
	Convey("Given channel type names", t, func() {
		var typ Type

		Convey("mpd and dash decode to TypeMPD", func() {
			So(typ.UnmarshalText([]byte("MPD")), ShouldBeNil)
			So(typ, ShouldEqual, TypeMPD)
			So(typ.UnmarshalText([]byte("dash")), ShouldBeNil)
			So(typ, ShouldEqual, TypeMPD)
		})

		Convey("empty decodes to TypeOther", func() {
			So(typ.UnmarshalText(nil), ShouldBeNil)
			So(typ, ShouldEqual, TypeOther)
		})

		Convey("unknown names are rejected", func() {
			So(typ.UnmarshalText([]byte("rtmp")), ShouldNotBeNil)
		})
	})
}

func TestChannelDRM(t *testing.T) {
	Convey("Given a registry with DRM credentials", t, func() {
		r := sampleRegistry()

		Convey("mpd channels expose their credentials", func() {
			c, ok := r.Get(1)
			So(ok, ShouldBeTrue)
			drm, present := c.DRM().Get()
			So(present, ShouldBeTrue)
			So(drm.Keys["aa"], ShouldEqual, "bb")
		})

		Convey("other channels never do, even when the file had some", func() {
			c, _ := r.Get(2)
			So(c.DRM().IsAbsent(), ShouldBeTrue)
		})

		Convey("JSON output keeps the file shape", func() {
			c, _ := r.Get(1)
			data, err := json.Marshal(c)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, `"type":"mpd"`)
			So(string(data), ShouldContainSubstring, `"scheme":"clearkey"`)
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry", t, func() {
		r := sampleRegistry()

		Convey("Get rejects out of range indexes", func() {
			_, ok := r.Get(-1)
			So(ok, ShouldBeFalse)
			_, ok = r.Get(r.Len())
			So(ok, ShouldBeFalse)
		})

		Convey("Categories are unique and sorted", func() {
			So(r.Categories(), ShouldResemble, []string{"News", "Sports"})
		})

		Convey("Filter keeps registry order", func() {
			So(r.Filter(Filter{Category: "Sports"}), ShouldResemble, []int{1, 3})
			So(r.Filter(Filter{Category: AllCategories}), ShouldResemble, []int{0, 1, 2, 3})
		})

		Convey("Substring search is case-insensitive", func() {
			So(r.Filter(Filter{Query: "sport"}), ShouldResemble, []int{1, 3})
		})

		Convey("Fuzzy search matches subsequences", func() {
			So(r.Filter(Filter{Query: "ssp"}), ShouldBeEmpty)
			So(r.Filter(Filter{Query: "ssp", Fuzzy: true}), ShouldResemble, []int{1})
		})

		Convey("All returns a copy", func() {
			all := r.All()
			all[0].Name = "changed"
			c, _ := r.Get(0)
			So(c.Name, ShouldEqual, "BBC One")
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given channel files on the virtual filesystem", t, func() {
		fs := filesystem.API()

		Convey("YAML files are decoded", func() {
			lo.Must0(fs.WriteFile("/ch/list.yaml", []byte(`
channels:
  - name: One
    url: https://example.com/1.m3u8
  - name: Two
    url: https://example.com/2.mpd
    category: Movies
    type: mpd
    drm:
      scheme: clearkey
      keys:
        kid: key
`), 0644))

			r, err := Load("/ch/list.yaml")
			So(err, ShouldBeNil)
			So(r.Len(), ShouldEqual, 2)

			first, _ := r.Get(0)
			So(first.Category, ShouldEqual, Uncategorized)

			second, _ := r.Get(1)
			So(second.Type, ShouldEqual, TypeMPD)
			So(second.DRM().MustGet().Keys["kid"], ShouldEqual, "key")
		})

		Convey("JSON arrays are decoded", func() {
			lo.Must0(fs.WriteFile("/ch/list.json", []byte(`[{"name":"One","url":"https://example.com/1"}]`), 0644))

			r, err := Load("/ch/list.json")
			So(err, ShouldBeNil)
			So(r.Len(), ShouldEqual, 1)
		})

		Convey("Entries without a url are rejected", func() {
			lo.Must0(fs.WriteFile("/ch/bad.json", []byte(`{"channels":[{"name":"One"}]}`), 0644))

			_, err := Load("/ch/bad.json")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "entry 1")
		})

		Convey("Empty files report ErrEmpty", func() {
			lo.Must0(fs.WriteFile("/ch/empty.yaml", []byte("channels: []\n"), 0644))

			_, err := Load("/ch/empty.yaml")
			So(errors.Is(err, ErrEmpty), ShouldBeTrue)
		})

		Convey("Unknown extensions are rejected", func() {
			lo.Must0(fs.WriteFile("/ch/list.txt", []byte("x"), 0644))

			_, err := Load("/ch/list.txt")
			So(err, ShouldNotBeNil)
		})

		Convey("Missing files surface the read error", func() {
			_, err := Load("/ch/missing.yaml")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseM3U(t *testing.T) {
	Convey("Given an extended M3U playlist", t, func() {
		playlist := []byte(`#EXTM3U
#EXTINF:-1 tvg-logo="http://logo/a.png" group-title="News", BBC One
https://example.com/bbc1.m3u8
#KODIPROP:inputstream.adaptive.license_type=org.w3.clearkey
#KODIPROP:inputstream.adaptive.license_key=0011:2233
#EXTINF:-1 group-title="Sports, Live",Sky Sports, HD
https://example.com/sky.mpd?token=1
https://example.com/bare.m3u8
`)

		r, err := ParseM3U(playlist)
		So(err, ShouldBeNil)
		So(r.Len(), ShouldEqual, 3)

		Convey("Names and categories come from EXTINF", func() {
			c, _ := r.Get(0)
			So(c.Name, ShouldEqual, "BBC One")
			So(c.Category, ShouldEqual, "News")
			So(c.Type, ShouldEqual, TypeOther)
		})

		Convey("KODIPROP clearkey lines attach DRM to the next entry", func() {
			c, _ := r.Get(1)
			So(c.Name, ShouldEqual, "Sky Sports, HD")
			So(c.Category, ShouldEqual, "Sports, Live")
			So(c.Type, ShouldEqual, TypeMPD)
			drm := c.DRM().MustGet()
			So(drm.Scheme, ShouldEqual, "clearkey")
			So(drm.Keys["0011"], ShouldEqual, "2233")
		})

		Convey("Entries without EXTINF use the url as name", func() {
			c, _ := r.Get(2)
			So(c.Name, ShouldEqual, "https://example.com/bare.m3u8")
			So(c.Category, ShouldEqual, Uncategorized)
			So(c.DRM().IsAbsent(), ShouldBeTrue)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given data named by a url path", t, func() {
		Convey("The extension picks the decoder", func() {
			r, err := Parse("/lists/tv.m3u8", []byte("#EXTM3U\n#EXTINF:-1,One\nhttps://example.com/1.m3u8\n"))
			So(err, ShouldBeNil)
			So(r.Len(), ShouldEqual, 1)
		})

		Convey("Decode errors name the source", func() {
			_, err := Parse("/lists/tv.json", []byte("{"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldStartWith, "tv.json: ")
		})
	})
}
