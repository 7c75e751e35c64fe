package report

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/presence/core"
)

// Report kinds
const (
	KindText = "text"
	KindFile = "file"
)

// Review statuses
const (
	StatusSubmitted = "submitted"
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

const UnknownSession = "Unknown session"

var (
	fileExtensions = []string{".pdf", ".doc", ".docx", ".txt"}

	reportFileTag  = "reportfile"
	reportFileText = "a report file must be a .pdf, .doc, .docx or .txt file"
)

func init() {
	core.Validate.RegisterStructValidation(reportStructValidation, NewReport{})
	core.RegisterCustomTranslation(reportFileTag, reportFileText)
}

// Report is what a trainer submits after a session. A session has at most one report:
// submitting again replaces it.
type Report struct {
	ID          int64     `db:"id" json:"id"`
	SessionID   int64     `db:"session_id" json:"session_id"`
	TrainerID   int64     `db:"trainer_id" json:"trainer_id"`
	Kind        string    `db:"kind" json:"kind"`
	Content     string    `db:"content" json:"content"`           // the text, or the file name
	SubmittedAt string    `db:"submitted_at" json:"submitted_at"` // yyyy-MM-dd
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Details is a Report joined with its session, course and trainer.
type Details struct {
	Report
	SessionLabel string `json:"session_label"`
	CourseTitle  string `json:"course_title"`
	TrainerName  string `json:"trainer_name"`
}

// NewReport contains information needed to submit a Report.
type NewReport struct {
	SessionID int64  `json:"session_id" validate:"required"`
	TrainerID int64  `json:"trainer_id" validate:"required"`
	Kind      string `json:"kind" validate:"required,oneof=text file"`
	Content   string `json:"content" validate:"required,notblank"`
}

func (nr *NewReport) Validate() error {
	nr.Kind = core.CleanString(nr.Kind, true /* lower */)
	nr.Content = strings.TrimSpace(nr.Content)
	return core.ValidateStruct(nr)
}

func reportStructValidation(sl validator.StructLevel) {
	nr, ok := sl.Current().Interface().(NewReport)
	if !ok || nr.Kind != KindFile || nr.Content == "" {
		return
	}
	if !IsAllowedFile(nr.Content) {
		sl.ReportError(nr.Content, "content", "Content", reportFileTag, "")
	}
}

// IsAllowedFile reports whether `name` has one of the accepted report file extensions.
func IsAllowedFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range fileExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// IsReviewStatus reports whether `status` may be set by a reviewer.
func IsReviewStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}
