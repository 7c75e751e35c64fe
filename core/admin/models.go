package admin

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/presence/core"
)

// Admin is a back-office account allowed to manage every other entity.
type Admin struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Surname      string    `db:"surname" json:"surname"`
	Email        string    `db:"email" json:"email"`
	PasswordHash []byte    `db:"password_hash" json:"password_hash,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

func (a Admin) FullName() string { return core.FullName(a.Name, a.Surname) }

func (a *Admin) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a Admin) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// NewAdmin contains information needed to create a new Admin.
type NewAdmin struct {
	Name     string `json:"name" validate:"required,notblank"`
	Surname  string `json:"surname" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (na *NewAdmin) Validate() error {
	na.Name = core.CleanString(na.Name)
	na.Surname = core.CleanString(na.Surname)
	na.Email = core.CleanString(na.Email, true /* lower */)
	return core.ValidateStruct(na)
}

// UpdateAdmin defines what information may be provided to modify an existing Admin.
// Empty fields are left untouched.
type UpdateAdmin struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

func (ua *UpdateAdmin) Validate() error {
	ua.Name = core.CleanString(ua.Name)
	ua.Surname = core.CleanString(ua.Surname)
	ua.Email = core.CleanString(ua.Email, true /* lower */)
	return core.ValidateStruct(ua)
}
