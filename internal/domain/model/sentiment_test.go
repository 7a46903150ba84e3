package model_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/okian/sentiscope/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestThresholdOverride_Merge(t *testing.T) {
	Convey("Given threshold overrides", t, func() {
		defaults := model.ThresholdRange{Low: -0.1, High: 0.2}
		low, high := -0.3, 0.4

		Convey("When no bound is set", func() {
			Convey("Then the defaults are left to the caller", func() {
				var nilOverride *model.ThresholdOverride
				So(nilOverride.Merge(defaults), ShouldBeNil)
				So((&model.ThresholdOverride{}).Merge(defaults), ShouldBeNil)
			})
		})

		Convey("When only one bound is set", func() {
			Convey("Then the other bound keeps its default", func() {
				So(*(&model.ThresholdOverride{Low: &low}).Merge(defaults), ShouldResemble, model.ThresholdRange{Low: -0.3, High: 0.2})
				So(*(&model.ThresholdOverride{High: &high}).Merge(defaults), ShouldResemble, model.ThresholdRange{Low: -0.1, High: 0.4})
			})
		})

		Convey("When decoded from JSON with one bound", func() {
			var o model.ThresholdOverride
			So(json.Unmarshal([]byte(`{"low":-0.3}`), &o), ShouldBeNil)

			Convey("Then the missing bound stays unset", func() {
				So(o.High, ShouldBeNil)
				So(*o.Merge(defaults), ShouldResemble, model.ThresholdRange{Low: -0.3, High: 0.2})
			})
		})
	})
}

func TestThresholdRange_Validate(t *testing.T) {
	Convey("Given threshold ranges", t, func() {
		Convey("When using the defaults", func() {
			r := model.DefaultThresholds()

			Convey("Then they are (-0.05, 0.05) and valid", func() {
				So(r.Low, ShouldEqual, -0.05)
				So(r.High, ShouldEqual, 0.05)
				So(r.Validate(), ShouldBeNil)
			})
		})

		Convey("When low equals high", func() {
			Convey("Then the range is valid", func() {
				So(model.ThresholdRange{Low: 0.2, High: 0.2}.Validate(), ShouldBeNil)
			})
		})

		Convey("When the full range is used", func() {
			Convey("Then the range is valid", func() {
				So(model.ThresholdRange{Low: -1, High: 1}.Validate(), ShouldBeNil)
			})
		})

		Convey("When low is greater than high", func() {
			err := model.ThresholdRange{Low: 0.5, High: -0.5}.Validate()

			Convey("Then validation fails with ErrInvalidThresholds", func() {
				So(errors.Is(err, model.ErrInvalidThresholds), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "greater than high")
			})
		})

		Convey("When a bound leaves [-1, 1]", func() {
			Convey("Then both low and high are checked", func() {
				So(errors.Is(model.ThresholdRange{Low: -1.5, High: 0}.Validate(), model.ErrInvalidThresholds), ShouldBeTrue)
				So(errors.Is(model.ThresholdRange{Low: 0, High: 1.01}.Validate(), model.ErrInvalidThresholds), ShouldBeTrue)
			})
		})

		Convey("When a bound is NaN", func() {
			Convey("Then validation fails", func() {
				So(model.ThresholdRange{Low: math.NaN(), High: 0}.Validate(), ShouldNotBeNil)
			})
		})
	})
}

func TestDocumentSentiment(t *testing.T) {
	Convey("Given document sentiments", t, func() {
		Convey("When scores are in range", func() {
			d := model.DocumentSentiment{Polarity: -0.4, Subjectivity: 0.9}

			Convey("Then it is valid and flattens into metric rows", func() {
				So(d.Valid(), ShouldBeTrue)
				So(d.Metrics(), ShouldResemble, []model.Metric{
					{Metric: "polarity", Value: -0.4},
					{Metric: "subjectivity", Value: 0.9},
				})
			})
		})

		Convey("When scores are out of range or NaN", func() {
			Convey("Then it is invalid", func() {
				So(model.DocumentSentiment{Polarity: 1.2}.Valid(), ShouldBeFalse)
				So(model.DocumentSentiment{Subjectivity: -0.1}.Valid(), ShouldBeFalse)
				So(model.DocumentSentiment{Polarity: math.NaN()}.Valid(), ShouldBeFalse)
			})
		})
	})
}

func TestTokenScoreJSON(t *testing.T) {
	Convey("Given a token score", t, func() {
		ts := model.TokenScore{Token: "great!", Compound: 0.6588}

		Convey("When encoding it", func() {
			data, err := json.Marshal(ts)

			Convey("Then it is a two element array", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, `["great!",0.6588]`)
			})

			Convey("And it decodes back to the same pair", func() {
				var back model.TokenScore
				So(json.Unmarshal(data, &back), ShouldBeNil)
				So(back, ShouldResemble, ts)
			})
		})

		Convey("When decoding malformed pairs", func() {
			var back model.TokenScore

			Convey("Then errors are returned", func() {
				So(json.Unmarshal([]byte(`["only"]`), &back), ShouldNotBeNil)
				So(json.Unmarshal([]byte(`[1, 2]`), &back), ShouldNotBeNil)
				So(json.Unmarshal([]byte(`["x", "y"]`), &back), ShouldNotBeNil)
				So(json.Unmarshal([]byte(`{"token":"x"}`), &back), ShouldNotBeNil)
			})
		})
	})
}

func TestTokenBuckets(t *testing.T) {
	Convey("Given empty buckets", t, func() {
		b := model.NewTokenBuckets()

		Convey("Then they encode as empty arrays", func() {
			data, err := json.Marshal(b)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `{"positives":[],"negatives":[],"neutral":[]}`)
			So(b.Len(), ShouldEqual, 0)
		})

		Convey("When tokens are added", func() {
			b.Positives = append(b.Positives, model.TokenScore{Token: "good", Compound: 0.44})
			b.Negatives = append(b.Negatives, model.TokenScore{Token: "bad", Compound: -0.54})
			b.Neutral = append(b.Neutral, "table", "chair")

			Convey("Then Len counts every bucket", func() {
				So(b.Len(), ShouldEqual, 4)
			})
		})
	})
}

func TestAnalysisError(t *testing.T) {
	Convey("Given an analysis error", t, func() {
		cause := errors.New("lexicon exploded")
		err := error(model.NewAnalysisError("scoring.score", cause))

		Convey("Then it matches ErrAnalysis and unwraps to the cause", func() {
			So(errors.Is(err, model.ErrAnalysis), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(errors.Is(err, model.ErrEmptyInput), ShouldBeFalse)
			So(err.Error(), ShouldEqual, "scoring.score: analysis failed: lexicon exploded")

			var ae *model.AnalysisError
			So(errors.As(err, &ae), ShouldBeTrue)
			So(ae.Op, ShouldEqual, "scoring.score")
		})

		Convey("When it has no cause", func() {
			Convey("Then the message still names the operation", func() {
				So(model.NewAnalysisError("tokens.classify", nil).Error(), ShouldEqual, "tokens.classify: analysis failed")
			})
		})
	})
}
