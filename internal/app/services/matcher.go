package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
)

// Confidence policy.
const (
	// AutoMatchThreshold accepts the top candidate without asking.
	AutoMatchThreshold = 0.90
	// QuestionThreshold is the lowest score offered as a candidate choice.
	QuestionThreshold = 0.65
	// MaxCandidateOptions bounds a candidate_select question, excluding "skip".
	MaxCandidateOptions = 4
)

const (
	textSearchLimit  = 50
	colorSearchLimit = 500

	brandWeight       = 0.4
	shadeWeight       = 0.6
	shadeOnlyWeight   = 0.85
	brandOnlyWeight   = 0.5
	textWeightWithHex = 0.85
	colorOnlyCap      = 0.80

	// colorDistanceScale is the CIEDE2000 distance at which similarity reaches zero.
	colorDistanceScale = 25.0
)

// Match signals.
const (
	SignalBarcode         = "barcode"
	SignalShadeSimilarity = "shade_similarity"
	SignalColor           = "color"
)

// MatchOutcome is what the resolver should do next.
type MatchOutcome string

const (
	OutcomeAutoMatch       MatchOutcome = "auto_match"
	OutcomeCandidateSelect MatchOutcome = "candidate_select"
	OutcomeCaptureFrame    MatchOutcome = "capture_frame"
	OutcomeBrandShade      MatchOutcome = "brand_shade"
)

// MatchHints is the merged evidence of a session.
type MatchHints struct {
	GTIN       string
	Brand      string
	ShadeName  string
	Hex        string
	FrameCount int
}

// HasText reports whether brand or shade text is available.
func (h MatchHints) HasText() bool {
	return h.Brand != "" || h.ShadeName != ""
}

// Empty reports whether there is nothing to score.
func (h MatchHints) Empty() bool {
	return h.GTIN == "" && !h.HasText() && h.Hex == ""
}

// Fingerprint identifies an evidence set. Finalize compares it to decide
// whether an open question is still current.
func (h MatchHints) Fingerprint() string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		h.GTIN,
		strings.ToLower(h.Brand),
		strings.ToLower(h.ShadeName),
		h.Hex,
		fmt.Sprint(h.FrameCount),
	}, "\x1f")))
	return hex.EncodeToString(sum[:8])
}

// CollectHints merges session hints with frame evidence. Session hints win;
// frames fill remaining gaps newest first.
func CollectHints(metadata domain.SessionMetadata, frames []domain.CaptureFrame) MatchHints {
	hints := MatchHints{
		GTIN:       domain.NormalizeBarcode(metadata.Hints.GTIN),
		Brand:      strings.TrimSpace(metadata.Hints.Brand),
		ShadeName:  strings.TrimSpace(metadata.Hints.ShadeName),
		FrameCount: len(frames),
	}
	if value, ok := domain.NormalizeHex(metadata.Hints.Hex); ok {
		hints.Hex = value
	}
	for i := len(frames) - 1; i >= 0; i-- {
		extracted := frames[i].Quality.Extracted
		if hints.GTIN == "" {
			hints.GTIN = domain.NormalizeBarcode(extracted.GTIN)
		}
		if hints.Brand == "" {
			hints.Brand = strings.TrimSpace(extracted.Brand)
		}
		if hints.ShadeName == "" {
			hints.ShadeName = strings.TrimSpace(extracted.ShadeName)
		}
		if hints.Hex == "" {
			if value, ok := domain.NormalizeHex(extracted.Hex); ok {
				hints.Hex = value
			}
		}
	}
	return hints
}

// ScoredCandidate is one catalog shade with its confidence.
type ScoredCandidate struct {
	Shade  domain.CatalogShade
	Score  float64
	Signal string
}

// MatchDecision is the matcher output. Candidates are ranked best first.
type MatchDecision struct {
	Outcome    MatchOutcome
	Candidates []ScoredCandidate
}

// Top returns the best candidate, if any.
func (d MatchDecision) Top() (ScoredCandidate, bool) {
	if len(d.Candidates) == 0 {
		return ScoredCandidate{}, false
	}
	return d.Candidates[0], true
}

// Options returns the distinct candidates offered in a candidate_select question.
func (d MatchDecision) Options() []ScoredCandidate {
	seen := make(map[string]struct{}, MaxCandidateOptions)
	out := make([]ScoredCandidate, 0, MaxCandidateOptions)
	for _, candidate := range d.Candidates {
		if candidate.Score < QuestionThreshold || len(out) == MaxCandidateOptions {
			break
		}
		label := strings.ToLower(candidate.Shade.Label())
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, candidate)
	}
	return out
}

// ConfidenceMatcher scores catalog shades against capture evidence. It has
// no state beyond its collaborators.
type ConfidenceMatcher struct {
	distance ports.ColorDistance
}

// NewConfidenceMatcher builds a matcher. A nil distance disables color scoring.
func NewConfidenceMatcher(distance ports.ColorDistance) *ConfidenceMatcher {
	return &ConfidenceMatcher{distance: distance}
}

// Match ranks catalog candidates for hints. A barcode hit short-circuits
// text and color scoring.
func (m *ConfidenceMatcher) Match(ctx context.Context, catalog ports.CatalogLookup, hints MatchHints) (MatchDecision, error) {
	if hints.GTIN != "" {
		shade, err := catalog.FindByBarcode(ctx, hints.GTIN)
		switch {
		case err == nil:
			return MatchDecision{
				Outcome:    OutcomeAutoMatch,
				Candidates: []ScoredCandidate{{Shade: shade, Score: 1.0, Signal: SignalBarcode}},
			}, nil
		case !errors.Is(err, ports.ErrNotFound):
			return MatchDecision{}, fmt.Errorf("barcode lookup: %w", err)
		}
	}

	var (
		candidates []ScoredCandidate
		err        error
	)
	switch {
	case hints.HasText():
		candidates, err = m.scoreText(ctx, catalog, hints)
	case hints.Hex != "" && m.distance != nil:
		candidates, err = m.scoreColor(ctx, catalog, hints.Hex)
	}
	if err != nil {
		return MatchDecision{}, err
	}
	rankCandidates(candidates)
	return decide(hints, candidates), nil
}

func decide(hints MatchHints, candidates []ScoredCandidate) MatchDecision {
	decision := MatchDecision{Candidates: candidates}
	top, ok := decision.Top()
	switch {
	case ok && top.Score >= AutoMatchThreshold:
		decision.Outcome = OutcomeAutoMatch
	case ok && top.Score >= QuestionThreshold:
		decision.Outcome = OutcomeCandidateSelect
	case hints.FrameCount == 0:
		decision.Outcome = OutcomeCaptureFrame
	default:
		decision.Outcome = OutcomeBrandShade
	}
	return decision
}

func (m *ConfidenceMatcher) scoreText(ctx context.Context, catalog ports.CatalogLookup, hints MatchHints) ([]ScoredCandidate, error) {
	shades, err := catalog.SearchByText(ctx, hints.Brand, hints.ShadeName, textSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	out := make([]ScoredCandidate, 0, len(shades))
	for _, shade := range shades {
		var score float64
		switch {
		case hints.Brand != "" && hints.ShadeName != "":
			score = brandWeight*textSimilarity(hints.Brand, shade.Brand) + shadeWeight*textSimilarity(hints.ShadeName, shade.Name)
		case hints.ShadeName != "":
			score = shadeOnlyWeight * textSimilarity(hints.ShadeName, shade.Name)
		default:
			score = brandOnlyWeight * textSimilarity(hints.Brand, shade.Brand)
		}
		if hints.Hex != "" && shade.Hex != "" && m.distance != nil {
			if similarity, ok := m.colorSimilarity(hints.Hex, shade.Hex); ok {
				score = textWeightWithHex*score + (1-textWeightWithHex)*similarity
			}
		}
		out = append(out, ScoredCandidate{Shade: shade, Score: clampScore(score), Signal: SignalShadeSimilarity})
	}
	return out, nil
}

func (m *ConfidenceMatcher) scoreColor(ctx context.Context, catalog ports.CatalogLookup, hexValue string) ([]ScoredCandidate, error) {
	shades, err := catalog.ListWithHex(ctx, colorSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("color search: %w", err)
	}
	out := make([]ScoredCandidate, 0, len(shades))
	for _, shade := range shades {
		similarity, ok := m.colorSimilarity(hexValue, shade.Hex)
		if !ok || similarity == 0 {
			continue
		}
		out = append(out, ScoredCandidate{Shade: shade, Score: clampScore(colorOnlyCap * similarity), Signal: SignalColor})
	}
	return out, nil
}

func (m *ConfidenceMatcher) colorSimilarity(a, b string) (float64, bool) {
	d, err := m.distance(a, b)
	if err != nil {
		return 0, false
	}
	return clampScore(1 - d/colorDistanceScale), true
}

// rankCandidates sorts by score descending, then catalog id ascending.
func rankCandidates(candidates []ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Shade.ID < candidates[j].Shade.ID
	})
}

// textSimilarity is 1 minus the normalized edit distance of folded strings.
func textSimilarity(a, b string) float64 {
	a, b = foldText(a), foldText(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	return clampScore(1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest))
}

func foldText(value string) string {
	fields := strings.FieldsFunc(strings.ToLower(value), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}

func clampScore(score float64) float64 {
	return max(0, min(1, score))
}
