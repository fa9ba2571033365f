package filesystem

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBackendSwitching(t *testing.T) {
	Convey("Filesystem backend", t, func() {
		Convey("Defaults to the OS filesystem", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Can be swapped for an in-memory one", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")

			So(API().WriteFile("/probe", []byte("x"), 0644), ShouldBeNil)
			data, err := API().ReadFile("/probe")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "x")
		})

		Reset(SetOsFs)
	})
}
