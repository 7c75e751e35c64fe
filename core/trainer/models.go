package trainer

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/presence/core"
)

// Trainer runs sessions and records attendance during the presence window.
type Trainer struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Surname      string    `db:"surname" json:"surname"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	PasswordHash []byte    `db:"password_hash" json:"password_hash,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

func (t Trainer) FullName() string { return core.FullName(t.Name, t.Surname) }

func (t *Trainer) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	t.PasswordHash = hash
	return nil
}

func (t Trainer) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(t.PasswordHash, []byte(pwd))
}

// NewTrainer contains information needed to create a new Trainer.
type NewTrainer struct {
	Name     string `json:"name" validate:"required,notblank"`
	Surname  string `json:"surname" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone"`
	Password string `json:"password" validate:"required"`
}

func (nt *NewTrainer) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	nt.Surname = core.CleanString(nt.Surname)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Phone = cleanPhone(nt.Phone)
	return core.ValidateStruct(nt)
}

// UpdateTrainer defines what information may be provided to modify an existing Trainer.
// Empty fields keep their current value.
type UpdateTrainer struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Password string `json:"password"`

	// current values, used by the password policy
	current Trainer
}

func (ut *UpdateTrainer) Validate(orig Trainer) error {
	ut.Name = core.CleanString(ut.Name)
	ut.Surname = core.CleanString(ut.Surname)
	ut.Email = core.CleanString(ut.Email, true /* lower */)
	ut.Phone = cleanPhone(ut.Phone)
	ut.current = orig
	return core.ValidateStruct(ut)
}

func (ut UpdateTrainer) fields() core.Fields {
	return core.Fields{}.
		Set("name", ut.Name, ut.Name != "").
		Set("surname", ut.Surname, ut.Surname != "").
		Set("email", ut.Email, ut.Email != "").
		Set("phone", ut.Phone, ut.Phone != "")
}
