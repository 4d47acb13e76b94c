package model

import "time"

// Section is one schedulable offering of a course. Catalog membership is
// server-owned: sections are created from listing fetches or stream payloads
// and mutated in place, never deleted locally.
type Section struct {
	ID              string    `json:"id" validate:"required"`
	CourseID        string    `json:"courseId" validate:"required"`
	Title           string    `json:"title" validate:"required"`
	Instructor      string    `json:"instructor"`
	TimeSlot        string    `json:"timeSlot"`
	Days            []string  `json:"days" validate:"dive,required"`
	AvailableSeats  int       `json:"availableSeats" validate:"gte=0,ltefield=TotalCapacity"`
	TotalCapacity   int       `json:"totalCapacity" validate:"gt=0"`
	EnrollmentTotal int       `json:"enrollmentTotal" validate:"gte=0"`
	Location        string    `json:"location"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// Full reports whether no seats remain.
func (s Section) Full() bool {
	return s.AvailableSeats == 0
}
