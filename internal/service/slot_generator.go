package service

import (
	"sort"
	"time"

	"doctor-scheduling/internal/domain/entity"
)

// DefaultSlotStrideMinutes is the distance between consecutive candidate starts
const DefaultSlotStrideMinutes = 15

// GenerateSlots enumerates free start times on date.
//
// Each window is anchored to date in UTC and walked from its start in stride steps
// while the candidate still ends inside the window. A candidate is kept only if
// [candidate, candidate+consultation) overlaps no busy interval. Starts produced by
// several overlapping windows appear once, and the result is sorted ascending.
func GenerateSlots(date time.Time, windows []entity.TimeWindow, busy []entity.BusyInterval, consultationMinutes, strideMinutes int) []time.Time {
	if consultationMinutes <= 0 || consultationMinutes > entity.MaxConsultationMinutes || len(windows) == 0 {
		return []time.Time{}
	}
	if strideMinutes <= 0 || strideMinutes > entity.MaxConsultationMinutes {
		strideMinutes = DefaultSlotStrideMinutes
	}

	consultation := time.Duration(consultationMinutes) * time.Minute
	stride := time.Duration(strideMinutes) * time.Minute
	if consultation <= 0 || stride <= 0 {
		return []time.Time{}
	}

	seen := make(map[int64]struct{})
	slots := make([]time.Time, 0)

	for _, window := range windows {
		windowStart, windowEnd := window.On(date)
		for candidate := windowStart; !candidate.Add(consultation).After(windowEnd); candidate = candidate.Add(stride) {
			if entity.Conflicts(candidate, candidate.Add(consultation), busy) {
				continue
			}
			key := candidate.Unix()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			slots = append(slots, candidate)
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Before(slots[j])
	})
	return slots
}
