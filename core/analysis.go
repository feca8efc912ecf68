package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AnalysisFields are the five semantic fields produced by the input-analysis
// stage. EmotionIntensity is on a 1-10 scale.
type AnalysisFields struct {
	DominantEmotion  string   `json:"dominant_emotion"`
	EmotionIntensity int      `json:"emotion_intensity"`
	KeyTopics        []string `json:"key_topics"`
	ImplicitNeeds    []string `json:"implicit_needs"`
	Sentiment        string   `json:"sentiment"`
}

// Analysis is a tagged variant: either a successful analysis carrying
// AnalysisFields, or an error marker carrying the failure reason. Downstream
// stages branch on Ok() instead of probing a map for an "error" key.
type Analysis struct {
	ok     bool
	reason string

	AnalysisFields
}

// OKAnalysis wraps fields in a successful Analysis.
func OKAnalysis(f AnalysisFields) Analysis {
	return Analysis{ok: true, AnalysisFields: f}
}

// ErrAnalysis returns an Analysis error marker.
func ErrAnalysis(reason string) Analysis {
	return Analysis{reason: reason}
}

// Ok reports whether the analysis succeeded.
func (a Analysis) Ok() bool { return a.ok }

// Reason returns the failure reason for an error-tagged analysis.
func (a Analysis) Reason() string { return a.reason }

// ParseAnalysis parses the raw model output of the analysis stage into an
// Analysis. The model is asked for bare JSON but sometimes wraps it in a
// markdown fence, so fences are stripped before unmarshalling. All five
// fields are required; a missing field is a parse failure.
func ParseAnalysis(raw string) (Analysis, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var probe struct {
		DominantEmotion  *string  `json:"dominant_emotion"`
		EmotionIntensity *int     `json:"emotion_intensity"`
		KeyTopics        []string `json:"key_topics"`
		ImplicitNeeds    []string `json:"implicit_needs"`
		Sentiment        *string  `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return Analysis{}, fmt.Errorf("unmarshal analysis: %w", err)
	}

	if probe.DominantEmotion == nil || probe.EmotionIntensity == nil || probe.Sentiment == nil {
		return Analysis{}, fmt.Errorf("analysis missing required fields")
	}

	intensity := *probe.EmotionIntensity
	if intensity < 1 {
		intensity = 1
	}
	if intensity > 10 {
		intensity = 10
	}

	return OKAnalysis(AnalysisFields{
		DominantEmotion:  *probe.DominantEmotion,
		EmotionIntensity: intensity,
		KeyTopics:        probe.KeyTopics,
		ImplicitNeeds:    probe.ImplicitNeeds,
		Sentiment:        *probe.Sentiment,
	}), nil
}
