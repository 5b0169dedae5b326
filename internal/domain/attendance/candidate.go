// internal/domain/attendance/candidate.go
package attendance

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Candidate is a submission as received from a surface, before the store admits it.
type Candidate struct {
	StudentName    string `json:"studentName" validate:"required"`
	StudentClass   string `json:"studentClass" validate:"required"`
	AttendanceType Type   `json:"attendanceType" validate:"required,attendance_type"`
	Reason         string `json:"reason" validate:"required"`
	Memo           string `json:"memo"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Only reachable for non-empty values; "required" reports the empty case.
	_ = v.RegisterValidation("attendance_type", func(fl validator.FieldLevel) bool {
		return Type(fl.Field().String()).Valid()
	})
	return v
}

// Normalize trims every field and maps category aliases onto stored labels.
func (c Candidate) Normalize() Candidate {
	return Candidate{
		StudentName:    strings.TrimSpace(c.StudentName),
		StudentClass:   strings.TrimSpace(c.StudentClass),
		AttendanceType: ParseType(string(c.AttendanceType)),
		Reason:         strings.TrimSpace(c.Reason),
		Memo:           strings.TrimSpace(c.Memo),
	}
}

// Validate checks the required fields. It returns a *ValidationError naming each offending field.
func (c Candidate) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, FieldProblem{Field: fe.Field(), Rule: fe.Tag()})
	}
	return verr
}
