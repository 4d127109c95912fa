package types_test

import (
	"errors"
	"testing"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBatchRequestValidate(t *testing.T) {
	Convey("Given batch request validation", t, func() {
		Convey("A well-formed articles request passes", func() {
			req := types.BatchRequest{Kind: types.KindArticles, Limit: 10, MinScore: 0.7}
			So(req.Validate(), ShouldBeNil)
		})

		Convey("Limit zero is valid", func() {
			req := types.BatchRequest{Kind: types.KindArticles, Limit: 0, MinScore: 0.5}
			So(req.Validate(), ShouldBeNil)
		})

		Convey("A negative limit is rejected with the field named", func() {
			req := types.BatchRequest{Kind: types.KindArticles, Limit: -1}
			err := req.Validate()
			So(err, ShouldNotBeNil)

			var fe *types.FieldError
			So(errors.As(err, &fe), ShouldBeTrue)
			So(fe.Field, ShouldEqual, "limit")
		})

		Convey("min_score outside [0,1] is rejected", func() {
			for _, bad := range []float64{-0.1, 1.1} {
				req := types.BatchRequest{Kind: types.KindArticles, Limit: 5, MinScore: bad}
				err := req.Validate()
				So(err, ShouldNotBeNil)

				var fe *types.FieldError
				So(errors.As(err, &fe), ShouldBeTrue)
				So(fe.Field, ShouldEqual, "min_score")
			}
		})

		Convey("News requests need a positive hours_ago", func() {
			req := types.BatchRequest{Kind: types.KindNews, Limit: 5, HoursAgo: 0}
			err := req.Validate()
			So(err, ShouldNotBeNil)

			var fe *types.FieldError
			So(errors.As(err, &fe), ShouldBeTrue)
			So(fe.Field, ShouldEqual, "hours_ago")

			req.HoursAgo = 24
			So(req.Validate(), ShouldBeNil)
		})

		Convey("Event requests need a positive days_ahead", func() {
			req := types.BatchRequest{Kind: types.KindEvents, Limit: 5, DaysAhead: -3}
			err := req.Validate()
			So(err, ShouldNotBeNil)

			var fe *types.FieldError
			So(errors.As(err, &fe), ShouldBeTrue)
			So(fe.Field, ShouldEqual, "days_ahead")

			req.DaysAhead = 30
			So(req.Validate(), ShouldBeNil)
		})

		Convey("Field errors read as field plus reason", func() {
			fe := &types.FieldError{Field: "limit", Reason: "must not be negative"}
			So(fe.Error(), ShouldEqual, "limit: must not be negative")
		})
	})
}
