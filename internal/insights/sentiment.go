package insights

import (
	"github.com/jonreiter/govader"
)

// Sentiment labels and their display colors.
const (
	LabelPositive = "Positive"
	LabelNeutral  = "Neutral"
	LabelNegative = "Negative"

	colorPositive = "green"
	colorNeutral  = "grey"
	colorNegative = "red"
)

// VADER's conventional neutral band.
const neutralBand = 0.05

type Sentiment struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
	Color string  `json:"color"`
}

// Scorer rates note text with the VADER lexicon.
type Scorer struct {
	vader *govader.SentimentIntensityAnalyzer
}

func NewScorer() *Scorer {
	return &Scorer{vader: govader.NewSentimentIntensityAnalyzer()}
}

func (s *Scorer) Score(text string) Sentiment {
	if text == "" {
		return labelFor(0)
	}
	return labelFor(s.vader.PolarityScores(text).Compound)
}

func labelFor(score float64) Sentiment {
	switch {
	case score > neutralBand:
		return Sentiment{Score: score, Label: LabelPositive, Color: colorPositive}
	case score < -neutralBand:
		return Sentiment{Score: score, Label: LabelNegative, Color: colorNegative}
	default:
		return Sentiment{Score: score, Label: LabelNeutral, Color: colorNeutral}
	}
}
