package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a site handler", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		serve := func(method, path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(method, path, http.NoBody))
			return w
		}

		Convey("Then / serves the landing page", func() {
			w := serve(http.MethodGet, "/")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Body.String(), ShouldContainSubstring, "/builds/match")
			So(w.Body.String(), ShouldContainSubstring, `href="/api-docs"`)
		})

		Convey("And unknown paths are not found", func() {
			So(serve(http.MethodGet, "/some-asset").Code, ShouldEqual, http.StatusNotFound)
			So(serve(http.MethodGet, "/index.html").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And writes to / are not found", func() {
			So(serve(http.MethodPost, "/").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSiteHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		Convey("Then registering panics", func() {
			So(func() { Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}
