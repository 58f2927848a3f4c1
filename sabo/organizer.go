package sabo

import (
	"sort"

	"github.com/saboarena/sabo-platform/models"
)

// Organized is the bracket snapshot: the flat match list partitioned into the
// named stages of the draw, each sorted by (round, match number). It is
// recomputed on every read of the match list and never persisted.
type Organized struct {
	Size    Size
	buckets map[BracketType][]*models.SaboMatch

	// Unrecognized collects matches whose bracket_type is not part of the
	// declared draw. They are kept visible instead of silently dropped so
	// malformed data shows up in validation and logs.
	Unrecognized []*models.SaboMatch
}

// Organize partitions an unordered match list into the stages of the given
// draw size. Pure function; the input slice is not modified.
func Organize(matches []*models.SaboMatch, size Size) *Organized {
	o := &Organized{
		Size:    size,
		buckets: make(map[BracketType][]*models.SaboMatch, len(Structure(size))),
	}
	recognized := make(map[BracketType]bool)
	for _, bt := range Brackets(size) {
		recognized[bt] = true
	}

	for _, m := range matches {
		bt := BracketType(m.BracketType)
		if !recognized[bt] {
			o.Unrecognized = append(o.Unrecognized, m)
			continue
		}
		o.buckets[bt] = append(o.buckets[bt], m)
	}

	for bt := range o.buckets {
		bucket := o.buckets[bt]
		sort.SliceStable(bucket, func(i, j int) bool {
			if bucket[i].RoundNumber != bucket[j].RoundNumber {
				return bucket[i].RoundNumber < bucket[j].RoundNumber
			}
			return bucket[i].MatchNumber < bucket[j].MatchNumber
		})
	}
	return o
}

// Bucket returns the matches of one stage, sorted by (round, match number).
func (o *Organized) Bucket(bt BracketType) []*models.SaboMatch {
	return o.buckets[bt]
}

// Round returns the matches of one round within a stage.
func (o *Organized) Round(bt BracketType, round int) []*models.SaboMatch {
	var out []*models.SaboMatch
	for _, m := range o.buckets[bt] {
		if m.RoundNumber == round {
			out = append(out, m)
		}
	}
	return out
}

// Find returns the match at the given stage coordinates, or nil.
func (o *Organized) Find(bt BracketType, round, matchNumber int) *models.SaboMatch {
	for _, m := range o.buckets[bt] {
		if m.RoundNumber == round && m.MatchNumber == matchNumber {
			return m
		}
	}
	return nil
}

// Total counts every match in the snapshot, unrecognized ones included.
func (o *Organized) Total() int {
	n := len(o.Unrecognized)
	for _, bucket := range o.buckets {
		n += len(bucket)
	}
	return n
}

// All returns every recognized match in stage display order.
func (o *Organized) All() []*models.SaboMatch {
	var out []*models.SaboMatch
	for _, bt := range Brackets(o.Size) {
		out = append(out, o.buckets[bt]...)
	}
	return out
}

// ReadyMatches returns all matches whose both player slots are filled and
// which have not been scored yet, in stage display order.
func (o *Organized) ReadyMatches() []*models.SaboMatch {
	var out []*models.SaboMatch
	for _, m := range o.All() {
		if m.Status == models.MatchStatusReady && m.IsReady() {
			out = append(out, m)
		}
	}
	return out
}

func completedCount(matches []*models.SaboMatch) int {
	n := 0
	for _, m := range matches {
		if m.Status == models.MatchStatusCompleted {
			n++
		}
	}
	return n
}
