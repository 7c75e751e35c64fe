package attendance

import (
	"time"
)

// UnknownLearner is displayed in place of a learner that no longer exists.
const UnknownLearner = "Unknown learner"

// Record is the attendance of one learner at one session. There is at most one per pair;
// marking again overwrites Present and RecordedAt.
type Record struct {
	ID         int64     `db:"id" json:"id"`
	SessionID  int64     `db:"session_id" json:"session_id"`
	LearnerID  int64     `db:"learner_id" json:"learner_id"`
	RecordedAt string    `db:"recorded_at" json:"recorded_at"` // HH:mm
	Present    bool      `db:"present" json:"present"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// TrainerRecord is the attendance of the trainer at one of their sessions.
type TrainerRecord struct {
	ID         int64     `db:"id" json:"id"`
	SessionID  int64     `db:"session_id" json:"session_id"`
	TrainerID  int64     `db:"trainer_id" json:"trainer_id"`
	RecordedAt string    `db:"recorded_at" json:"recorded_at"` // HH:mm
	Present    bool      `db:"present" json:"present"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Details is a Record joined with the learner's identity.
type Details struct {
	Record
	LearnerName  string `json:"learner_name"`
	LearnerEmail string `json:"learner_email"`
	LearnerPhone string `json:"learner_phone"`
}

// Summary counts the attendance of the learners assigned to a session.
type Summary struct {
	SessionID int64 `json:"session_id"`
	Assigned  int   `json:"assigned"`
	Present   int   `json:"present"`
	Absent    int   `json:"absent"`
	Unmarked  int   `json:"unmarked"`
}

// Rate is the share of assigned learners marked present, between 0 and 1.
func (s Summary) Rate() float64 {
	if s.Assigned == 0 {
		return 0
	}
	return float64(s.Present) / float64(s.Assigned)
}
