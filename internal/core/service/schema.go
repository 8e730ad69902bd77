package service

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/medicare/hospital-system/internal/core/domain"
)

var schema = validator.New()

// fieldMessages holds the client-facing message for each constrained field.
var fieldMessages = map[string]string{
	"FirstName": "First Name Must Contain At Least 3 Characters!",
	"LastName":  "Last Name Must Contain At Least 3 Characters!",
	"Email":     "Provide A Valid Email!",
	"Phone":     "Phone Number Must Contain Exact 10 Digits!",
	"NIC":       "NIC Must Contain Only 12 Digits!",
	"Gender":    "Gender Must Be Male Or Female!",
	"DOB":       "DOB Is Required!",
	"Role":      "Invalid Role!",
}

// checkSchema validates a document against its struct tags and reports the
// first violation as a validation error.
func checkSchema(doc any) error {
	err := schema.Struct(doc)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		if msg, ok := fieldMessages[ve[0].StructField()]; ok {
			return domain.NewValidationError(msg)
		}
		return domain.NewValidationError(ve[0].Field() + " Is Invalid!")
	}
	return err
}

// parseDOB accepts a calendar date or an RFC 3339 timestamp.
func parseDOB(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewValidationError("Invalid Date Of Birth!")
}

// anyBlank reports whether any of the values is empty after trimming.
func anyBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
