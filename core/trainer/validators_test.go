package trainer

import (
	"testing"

	"github.com/trezcool/presence/core"
)

func TestNewTrainer_Validate(t *testing.T) {
	valid := NewTrainer{Name: "Marie", Surname: "Curie", Email: "marie.curie@formation.com", Phone: "01 02 03 04 05", Password: "s3cret-Pass"}
	tests := []struct {
		name      string
		edit      func(nt *NewTrainer)
		wantField string
		wantMsg   string
	}{
		{name: "valid"},
		{name: "international phone", edit: func(nt *NewTrainer) { nt.Phone = "+243 81-234-5678" }},
		{name: "bad phone", edit: func(nt *NewTrainer) { nt.Phone = "call me" }, wantField: "phone", wantMsg: "phone must be a phone number"},
		{name: "bad email", edit: func(nt *NewTrainer) { nt.Email = "marie" }, wantField: "email"},
		{name: "blank name", edit: func(nt *NewTrainer) { nt.Name = "  " }, wantField: "name"},
		{name: "no password", edit: func(nt *NewTrainer) { nt.Password = "" }, wantField: "password", wantMsg: "this field is required"},
		{name: "short password", edit: func(nt *NewTrainer) { nt.Password = "a1b2" }, wantField: "password", wantMsg: "password must contain at least 6 characters"},
		{name: "password with space", edit: func(nt *NewTrainer) { nt.Password = "s3cret Pass" }, wantField: "password", wantMsg: "password must not contain whitespace"},
		{name: "numeric password", edit: func(nt *NewTrainer) { nt.Password = "20250115" }, wantField: "password", wantMsg: "password cannot be entirely numeric"},
		{name: "password like surname", edit: func(nt *NewTrainer) { nt.Password = "curie1" }, wantField: "password", wantMsg: "password cannot be similar to the trainer's name or email"},
		{name: "password like email", edit: func(nt *NewTrainer) { nt.Password = "formation" }, wantField: "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nt := valid
			if tt.edit != nil {
				tt.edit(&nt)
			}
			err := nt.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			vErr, ok := err.(*core.ValidationError)
			if !ok {
				t.Fatalf("Validate() error = %v, want a validation error", err)
			}
			msg, ok := vErr.Field(tt.wantField)
			if !ok {
				t.Fatalf("Validate() error = %v, want field %s", err, tt.wantField)
			}
			if tt.wantMsg != "" && msg != tt.wantMsg {
				t.Errorf("Validate() %s = %q, want %q", tt.wantField, msg, tt.wantMsg)
			}
		})
	}
}

func TestNewTrainer_ValidateCleans(t *testing.T) {
	nt := NewTrainer{Name: " Marie ", Surname: "Curie", Email: " Marie.Curie@Formation.com", Phone: "01.02.03.04.05", Password: "s3cret-Pass"}
	if err := nt.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error = %v", err)
	}
	if nt.Name != "Marie" || nt.Email != "marie.curie@formation.com" || nt.Phone != "0102030405" {
		t.Errorf("Validate() left %+v", nt)
	}
}

func TestUpdateTrainer_Validate(t *testing.T) {
	orig := Trainer{ID: 1, Name: "Marie", Surname: "Curie", Email: "marie.curie@formation.com"}

	ut := UpdateTrainer{Password: "curie12"}
	if err := ut.Validate(orig); err == nil {
		t.Error("Validate() accepted a password similar to the current surname")
	}

	ut = UpdateTrainer{Name: "Pierre", Password: "Radium-1898"}
	if err := ut.Validate(orig); err != nil {
		t.Errorf("Validate() unexpected error = %v", err)
	}
	if f := ut.fields(); len(f) != 1 || f["name"] != "Pierre" {
		t.Errorf("fields() = %v", f)
	}
}
