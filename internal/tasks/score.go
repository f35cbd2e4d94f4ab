package tasks

import "github.com/desertthunder/dzx/internal/models"

const (
	// MaxScore is the score of a candidate that agrees with the source on every criterion.
	MaxScore = 5
	// DefaultThreshold accepts title and artist plus at least one of album, contributors or duration.
	DefaultThreshold = 4
)

// Scorer rates catalog candidates against a source track.
//
// Each criterion is an exact, case-sensitive comparison:
//   - title and artist both equal: 2
//   - album equal: 1
//   - contributor sets equal: 1
//   - duration equal: 1
//
// A zero Threshold means [DefaultThreshold].
type Scorer struct {
	Threshold int
}

// Score returns the additive similarity of candidate to source in [0, MaxScore].
func (s Scorer) Score(source, candidate models.Track) int {
	score := 0
	if source.Title == candidate.Title && source.Artist == candidate.Artist {
		score += 2
	}
	if source.Album == candidate.Album {
		score++
	}
	if sameContributors(source.Contributors, candidate.Contributors) {
		score++
	}
	if source.Duration == candidate.Duration {
		score++
	}
	return score
}

// Acceptable reports whether score clears the threshold.
func (s Scorer) Acceptable(score int) bool {
	threshold := s.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	return score >= threshold
}

// sameContributors compares two contributor lists as sets.
func sameContributors(a, b []string) bool {
	left := make(map[string]struct{}, len(a))
	for _, name := range a {
		left[name] = struct{}{}
	}
	right := make(map[string]struct{}, len(b))
	for _, name := range b {
		right[name] = struct{}{}
	}

	if len(left) != len(right) {
		return false
	}
	for name := range left {
		if _, ok := right[name]; !ok {
			return false
		}
	}
	return true
}
