package service

import (
	"math"
	"time"

	"doctor-scheduling/internal/domain/entity"
)

// Positions in FeatureVector. The order is part of the model contract.
const (
	FeaturePastNoShows = iota
	FeatureLeadTimeDays
	FeatureTimeOfDayBucket
	FeatureDayOfWeek
	FeatureChronicConditions
	FeatureConsultationMinutes
	FeatureRecentNoShows

	FeatureCount
)

// FeatureNames lists the feature names in vector order
var FeatureNames = [FeatureCount]string{
	"past_no_shows",
	"lead_time_days",
	"time_of_day_bucket",
	"day_of_week",
	"chronic_conditions_flag",
	"doctor_consultation_duration",
	"recent_no_shows",
}

// RecentNoShowWindow bounds what counts as a recent no-show
const RecentNoShowWindow = 90 * 24 * time.Hour

// FeatureVector is the ordered input of a NoShowPredictor
type FeatureVector [FeatureCount]float64

// NoShowHistory summarises a patient's attendance record
type NoShowHistory struct {
	PastNoShows   int64
	RecentNoShows int64
}

// BuildFeatures derives the feature vector for a booking of patient with doctor at start
func BuildFeatures(patient *entity.Patient, doctor *entity.Doctor, start, now time.Time, history NoShowHistory) FeatureVector {
	var features FeatureVector

	start = start.UTC()
	leadDays := start.Sub(now).Hours() / 24
	features[FeaturePastNoShows] = float64(history.PastNoShows)
	features[FeatureLeadTimeDays] = math.Max(0, leadDays)
	features[FeatureTimeOfDayBucket] = float64(TimeOfDayBucket(start))
	features[FeatureDayOfWeek] = float64(entity.Weekday(start))
	if patient != nil && patient.HasChronicConditions() {
		features[FeatureChronicConditions] = 1
	}

	consultation := entity.DefaultConsultationMinutes
	if doctor != nil {
		consultation = doctor.ConsultationMinutes()
	}
	features[FeatureConsultationMinutes] = float64(consultation)
	features[FeatureRecentNoShows] = float64(history.RecentNoShows)

	return features
}

// TimeOfDayBucket groups the UTC hour of t: before 9 is 0, before 12 is 1, before 17 is 2, otherwise 3
func TimeOfDayBucket(t time.Time) int {
	hour := t.UTC().Hour()
	switch {
	case hour < 9:
		return 0
	case hour < 12:
		return 1
	case hour < 17:
		return 2
	default:
		return 3
	}
}
