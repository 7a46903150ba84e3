package tokens_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/okian/sentiscope/internal/domain/model"
	"github.com/okian/sentiscope/internal/domain/tokens"
	. "github.com/smartystreets/goconvey/convey"
)

// lexiconModel scores tokens from a fixed table; unknown tokens score 0.
type lexiconModel map[string]float64

func (m lexiconModel) ScoreToken(tok string) (float64, error) {
	return m[tok], nil
}

type failingModel struct{ on string }

func (m failingModel) ScoreToken(tok string) (float64, error) {
	if tok == m.on {
		return 0, errors.New("cannot score")
	}
	return 0.5, nil
}

type panicModel struct{}

func (panicModel) ScoreToken(string) (float64, error) { panic("boom") }

func TestTokenize(t *testing.T) {
	Convey("Given texts with assorted whitespace", t, func() {
		Convey("Then runs of whitespace separate tokens and edges produce none", func() {
			So(tokens.Tokenize("  good \t bad\n\ntable  "), ShouldResemble, []string{"good", "bad", "table"})
			So(tokens.Tokenize("a b c"), ShouldResemble, []string{"a", "b", "c"})
		})

		Convey("Then punctuation and case are preserved", func() {
			So(tokens.Tokenize("Great! so-so, BAD."), ShouldResemble, []string{"Great!", "so-so,", "BAD."})
		})

		Convey("Then empty input yields no tokens", func() {
			So(tokens.Tokenize(""), ShouldBeEmpty)
			So(tokens.Tokenize(" \n\t "), ShouldBeEmpty)
		})
	})
}

func TestBucketFor(t *testing.T) {
	Convey("Given compound scores around the fixed cutoffs", t, func() {
		Convey("Then exactly 0.1 is neutral and exactly -0.1 is negative", func() {
			So(tokens.BucketFor(0.1), ShouldEqual, tokens.Neutral)
			So(tokens.BucketFor(-0.1), ShouldEqual, tokens.Negative)
		})

		Convey("Then values just past the cutoffs fall into the signed buckets", func() {
			So(tokens.BucketFor(0.1000001), ShouldEqual, tokens.Positive)
			So(tokens.BucketFor(-0.0999999), ShouldEqual, tokens.Neutral)
			So(tokens.BucketFor(1), ShouldEqual, tokens.Positive)
			So(tokens.BucketFor(-1), ShouldEqual, tokens.Negative)
			So(tokens.BucketFor(0), ShouldEqual, tokens.Neutral)
		})

		Convey("Then buckets have readable names", func() {
			So(tokens.Positive.String(), ShouldEqual, "positive")
			So(tokens.Negative.String(), ShouldEqual, "negative")
			So(tokens.Neutral.String(), ShouldEqual, "neutral")
		})
	})
}

func TestClassifier_ClassifyTokens(t *testing.T) {
	Convey("Given a classifier over a small lexicon", t, func() {
		lex := lexiconModel{
			"good":  0.4404,
			"bad":   -0.5423,
			"great": 0.6249,
			"edge+": 0.1,
			"edge-": -0.1,
			"meh":   0.05,
		}
		c := tokens.NewClassifier(lex)

		Convey("When classifying \"good bad table\"", func() {
			b, err := c.ClassifyTokens("good bad table")

			Convey("Then each token lands in its bucket with its score", func() {
				So(err, ShouldBeNil)
				So(b.Positives, ShouldResemble, []model.TokenScore{{Token: "good", Compound: 0.4404}})
				So(b.Negatives, ShouldResemble, []model.TokenScore{{Token: "bad", Compound: -0.5423}})
				So(b.Neutral, ShouldResemble, []string{"table"})
			})
		})

		Convey("When tokens score exactly on the cutoffs", func() {
			b, err := c.ClassifyTokens("edge+ edge-")

			Convey("Then 0.1 is neutral and -0.1 is negative", func() {
				So(err, ShouldBeNil)
				So(b.Positives, ShouldBeEmpty)
				So(b.Neutral, ShouldResemble, []string{"edge+"})
				So(b.Negatives, ShouldResemble, []model.TokenScore{{Token: "edge-", Compound: -0.1}})
			})
		})

		Convey("When tokens repeat and interleave", func() {
			text := "great meh bad good table bad great"
			b, err := c.ClassifyTokens(text)

			Convey("Then order inside each bucket follows the document", func() {
				So(err, ShouldBeNil)
				So(b.Positives, ShouldResemble, []model.TokenScore{
					{Token: "great", Compound: 0.6249},
					{Token: "good", Compound: 0.4404},
					{Token: "great", Compound: 0.6249},
				})
				So(b.Negatives, ShouldResemble, []model.TokenScore{
					{Token: "bad", Compound: -0.5423},
					{Token: "bad", Compound: -0.5423},
				})
				So(b.Neutral, ShouldResemble, []string{"meh", "table"})
			})

			Convey("And the buckets partition every token exactly once", func() {
				So(b.Len(), ShouldEqual, len(strings.Fields(text)))

				merged := make(map[string]int)
				for _, p := range b.Positives {
					merged[p.Token]++
				}
				for _, n := range b.Negatives {
					merged[n.Token]++
				}
				for _, n := range b.Neutral {
					merged[n]++
				}
				want := make(map[string]int)
				for _, tok := range strings.Fields(text) {
					want[tok]++
				}
				So(merged, ShouldResemble, want)
			})
		})

		Convey("When the text has no tokens", func() {
			b, err := c.ClassifyTokens("   ")

			Convey("Then the buckets are empty but non-nil", func() {
				So(err, ShouldBeNil)
				So(b.Len(), ShouldEqual, 0)
				So(b.Positives, ShouldNotBeNil)
				So(b.Negatives, ShouldNotBeNil)
				So(b.Neutral, ShouldNotBeNil)
			})
		})

		Convey("When classifying twice", func() {
			first, _ := c.ClassifyTokens("good bad table great")
			second, _ := c.ClassifyTokens("good bad table great")

			Convey("Then the results are identical", func() {
				So(first, ShouldResemble, second)
			})
		})
	})

	Convey("Given a model that fails on one token", t, func() {
		c := tokens.NewClassifier(failingModel{on: "x"})

		Convey("When that token appears mid-text", func() {
			b, err := c.ClassifyTokens("a b x c")

			Convey("Then the whole call fails with no partial result", func() {
				So(errors.Is(err, model.ErrAnalysis), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, `"x"`)
				So(b.Len(), ShouldEqual, 0)
				So(b.Positives, ShouldBeNil)
			})
		})
	})

	Convey("Given a model returning out-of-range scores", t, func() {
		Convey("Then the classifier rejects them", func() {
			for _, v := range []float64{1.5, -2, math.NaN()} {
				_, err := tokens.NewClassifier(lexiconModel{"odd": v}).ClassifyTokens("odd")
				So(errors.Is(err, model.ErrAnalysis), ShouldBeTrue)
			}
		})
	})

	Convey("Given a model that panics", t, func() {
		_, err := tokens.NewClassifier(panicModel{}).ClassifyTokens("anything")

		Convey("Then the panic surfaces as an AnalysisError", func() {
			So(errors.Is(err, model.ErrAnalysis), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "boom")
		})
	})
}
