package course

import (
	"time"

	"github.com/trezcool/presence/core"
)

// UnknownTrainer is displayed in place of a trainer that no longer exists.
const UnknownTrainer = "Unknown trainer"

// Course is a training program taught by one trainer over several sessions.
type Course struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	TrainerID   int64     `db:"trainer_id" json:"trainer_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Details is a Course joined with the name of its trainer.
type Details struct {
	Course
	TrainerName string `json:"trainer_name"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description"`
	TrainerID   int64  `json:"trainer_id" validate:"required"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return core.ValidateStruct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Title       *string `json:"title" validate:"omitnil,notblank"`
	Description *string `json:"description"`
	TrainerID   *int64  `json:"trainer_id" validate:"omitnil,gt=0"`
}

func (uc *UpdateCourse) Validate() error {
	if uc.Title != nil {
		*uc.Title = core.CleanString(*uc.Title)
	}
	if uc.Description != nil {
		*uc.Description = core.CleanString(*uc.Description)
	}
	return core.ValidateStruct(uc)
}

func (uc UpdateCourse) fields() core.Fields {
	f := core.Fields{}
	if uc.Title != nil {
		f["title"] = *uc.Title
	}
	if uc.Description != nil {
		f["description"] = *uc.Description
	}
	if uc.TrainerID != nil {
		f["trainer_id"] = *uc.TrainerID
	}
	return f
}
