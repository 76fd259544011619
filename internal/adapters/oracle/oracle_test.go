package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/buildlab/internal/domain/completion"
	"github.com/okian/buildlab/internal/domain/model"
	"github.com/okian/buildlab/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestOpenAI(t *testing.T) {
	Convey("Given an OpenAI-compatible server", t, func() {
		var got chatRequest
		var auth string
		status := http.StatusOK
		reply := `{"choices":[{"message":{"content":"{\"position\":\"PG\"}"},"finish_reason":"stop"}]}`

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))
		defer srv.Close()

		c := NewOpenAI("sk-test", "", WithBaseURL(srv.URL+"/"))
		req := completion.Request{Schema: completion.SchemaAnalysis, System: "sys", User: "usr", Temperature: 0.3}

		Convey("When the call succeeds", func() {
			out, err := c.Complete(context.Background(), req)

			Convey("Then the message content is returned", func() {
				So(err, ShouldBeNil)
				So(string(out), ShouldEqual, `{"position":"PG"}`)
			})

			Convey("And the request is JSON mode with both roles", func() {
				So(auth, ShouldEqual, "Bearer sk-test")
				So(got.Model, ShouldEqual, DefaultOpenAIModel)
				So(got.ResponseFormat.Type, ShouldEqual, "json_object")
				So(got.Temperature, ShouldEqual, 0.3)
				So(got.Messages, ShouldResemble, []chatMessage{{Role: "system", Content: "sys"}, {Role: "user", Content: "usr"}})
			})
		})

		Convey("When the server rejects the call", func() {
			status = http.StatusTooManyRequests
			reply = `{"error":"rate limited"}`
			_, err := c.Complete(context.Background(), req)
			So(errors.Is(err, model.ErrOracle), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "429")
		})

		Convey("When there are no choices", func() {
			reply = `{"choices":[]}`
			_, err := c.Complete(context.Background(), req)
			So(errors.Is(err, model.ErrOracle), ShouldBeTrue)
		})

		Convey("When the body is not JSON", func() {
			reply = `<html>`
			_, err := c.Complete(context.Background(), req)
			So(errors.Is(err, model.ErrOracle), ShouldBeTrue)
		})
	})
}

func TestOracle(t *testing.T) {
	_ = logger.Init()
	req := completion.Request{Schema: completion.SchemaBuild}

	Convey("Given a wrapped service", t, func() {
		Convey("When the inner call succeeds", func() {
			o := Wrap(completion.Func(func(context.Context, completion.Request) ([]byte, error) {
				return []byte(`{}`), nil
			}), "fake", 0)
			out, err := o.Complete(context.Background(), req)
			So(err, ShouldBeNil)
			So(string(out), ShouldEqual, "{}")
			So(o.Provider(), ShouldEqual, "fake")
			So(o.Close(), ShouldBeNil)
		})

		Convey("When the inner call fails with a plain error", func() {
			o := Wrap(completion.Func(func(context.Context, completion.Request) ([]byte, error) {
				return nil, errors.New("dial tcp: refused")
			}), "fake", 0)
			_, err := o.Complete(context.Background(), req)
			So(errors.Is(err, model.ErrOracle), ShouldBeTrue)
		})

		Convey("When the inner call outlives the timeout", func() {
			o := Wrap(completion.Func(func(ctx context.Context, _ completion.Request) ([]byte, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}), "slow", 10*time.Millisecond)
			_, err := o.Complete(context.Background(), req)

			Convey("Then the error is a deadline, not an oracle failure", func() {
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
				So(errors.Is(err, model.ErrOracle), ShouldBeFalse)
			})
		})

		Convey("When the caller cancels", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			o := Wrap(completion.Func(func(ctx context.Context, _ completion.Request) ([]byte, error) {
				return nil, ctx.Err()
			}), "fake", time.Second)
			_, err := o.Complete(ctx, req)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given provider configuration", t, func() {
		o, err := New(context.Background(), Config{Provider: ProviderOpenAI, APIKey: "k"})
		So(err, ShouldBeNil)
		So(o.Provider(), ShouldEqual, ProviderOpenAI)

		_, err = New(context.Background(), Config{Provider: "carrier-pigeon"})
		So(errors.Is(err, ErrUnknownProvider), ShouldBeTrue)
	})
}
