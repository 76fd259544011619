package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/buildlab/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFunc(t *testing.T) {
	Convey("Given a function adapter", t, func() {
		var seen Request
		svc := Func(func(_ context.Context, req Request) ([]byte, error) {
			seen = req
			return []byte(`{"ok":true}`), nil
		})

		out, err := svc.Complete(context.Background(), Request{Schema: SchemaMatch, Temperature: 0.1})

		So(err, ShouldBeNil)
		So(string(out), ShouldEqual, `{"ok":true}`)
		So(seen.Schema, ShouldEqual, SchemaMatch)
	})
}

func TestDecode(t *testing.T) {
	type payload struct {
		Position string `json:"position"`
	}

	Convey("Given completion bodies", t, func() {
		Convey("When the body is a plain object", func() {
			var p payload
			So(Decode(SchemaAnalysis, []byte(` {"position":"PG"} `), &p), ShouldBeNil)
			So(p.Position, ShouldEqual, "PG")
		})

		Convey("When the object is fenced", func() {
			var p payload
			So(Decode(SchemaAnalysis, []byte("```json\n{\"position\":\"C\"}\n```"), &p), ShouldBeNil)
			So(p.Position, ShouldEqual, "C")
		})

		Convey("When the body is not JSON", func() {
			var p payload
			err := Decode(SchemaBuild, []byte("I think a PG would be nice"), &p)
			So(errors.Is(err, model.ErrOracle), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "build")
		})

		Convey("When the body is empty", func() {
			var p payload
			So(errors.Is(Decode(SchemaMatch, nil, &p), model.ErrOracle), ShouldBeTrue)
		})
	})
}
