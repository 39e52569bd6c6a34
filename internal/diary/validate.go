package diary

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
)

// ErrInvalidInput matches every *ValidationError.
var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New()

type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Problems, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

type createInput struct {
	SourceLocator string  `validate:"required"`
	StartTime     float64 `validate:"gte=0"`
	EndTime       float64 `validate:"gtfield=StartTime"`
	Name          string  `validate:"required,max=100"`
	Description   string  `validate:"required,max=500"`
}

// Normalize trims the metadata and checks the request against the clip form
// rules. The core operations do not call it; the HTTP and CLI surfaces do.
func (r *CreateRequest) Normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)

	err := validate.Struct(createInput{
		SourceLocator: r.SourceLocator,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Name:          r.Name,
		Description:   r.Description,
	})
	if err != nil {
		return &ValidationError{Problems: FormatValidationErrors(err)}
	}
	return nil
}

// Normalize trims and checks the fields present in the request.
func (r *EditRequest) Normalize() error {
	var problems []string

	check := func(field string, value *string, limit int) {
		if value == nil {
			return
		}
		*value = strings.TrimSpace(*value)
		if err := validate.Var(*value, fmt.Sprintf("required,max=%d", limit)); err != nil {
			for _, p := range FormatValidationErrors(err) {
				problems = append(problems, field+": "+p)
			}
		}
	}
	check("Name", r.Name, MaxNameLength)
	check("Description", r.Description, MaxDescriptionLength)

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// FormatValidationErrors renders validator failures as readable lines.
func FormatValidationErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		var line string
		if fe.Field() != "" {
			line = fmt.Sprintf("Field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		} else {
			line = fmt.Sprintf("failed on the '%s' tag", fe.Tag())
		}
		if fe.Param() != "" {
			line = fmt.Sprintf("%s (value: %s)", line, fe.Param())
		}
		out = append(out, line)
	}
	return out
}
