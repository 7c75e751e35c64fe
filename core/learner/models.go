package learner

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/presence/core"
)

// Learner attends sessions. Email and phone are optional.
type Learner struct {
	ID        int64       `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	Surname   string      `db:"surname" json:"surname"`
	Email     null.String `db:"email" json:"email"`
	Phone     null.String `db:"phone" json:"phone"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

func (l Learner) FullName() string { return core.FullName(l.Name, l.Surname) }

// NewLearner contains information needed to create a new Learner.
type NewLearner struct {
	Name    string `json:"name" validate:"required,notblank"`
	Surname string `json:"surname" validate:"required,notblank"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
}

func (nl *NewLearner) Validate() error {
	nl.Name = core.CleanString(nl.Name)
	nl.Surname = core.CleanString(nl.Surname)
	nl.Email = core.CleanString(nl.Email, true /* lower */)
	nl.Phone = core.CleanString(nl.Phone)
	return core.ValidateStruct(nl)
}

func (nl NewLearner) learner() Learner {
	return Learner{
		Name:    nl.Name,
		Surname: nl.Surname,
		Email:   null.NewString(nl.Email, nl.Email != ""),
		Phone:   null.NewString(nl.Phone, nl.Phone != ""),
	}
}

// UpdateLearner defines what information may be provided to modify an existing Learner.
// Nil fields are left untouched; an empty Email or Phone clears it.
type UpdateLearner struct {
	Name    *string `json:"name" validate:"omitnil,notblank"`
	Surname *string `json:"surname" validate:"omitnil,notblank"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=20"`
}

func (ul *UpdateLearner) Validate() error {
	clean := func(s *string, lower bool) {
		if s != nil {
			*s = core.CleanString(*s, lower)
		}
	}
	clean(ul.Name, false)
	clean(ul.Surname, false)
	clean(ul.Email, true)
	clean(ul.Phone, false)
	return core.ValidateStruct(ul)
}

func (ul UpdateLearner) fields() core.Fields {
	f := core.Fields{}
	if ul.Name != nil {
		f["name"] = *ul.Name
	}
	if ul.Surname != nil {
		f["surname"] = *ul.Surname
	}
	if ul.Email != nil {
		f["email"] = null.NewString(*ul.Email, *ul.Email != "")
	}
	if ul.Phone != nil {
		f["phone"] = null.NewString(*ul.Phone, *ul.Phone != "")
	}
	return f
}
