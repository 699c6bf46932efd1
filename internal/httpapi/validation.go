package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"BillSync/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// syncRequest is the manual trigger body. Either state or states names the
// jurisdictions to sync.
type syncRequest struct {
	State  string   `json:"state" validate:"omitempty,alpha,len=2"`
	States []string `json:"states" validate:"omitempty,max=60,dive,alpha,len=2"`
	Limit  int      `json:"limit" validate:"gte=0,lte=1000"`
	Full   bool     `json:"full"`
}

func (r syncRequest) codes() []string {
	if len(r.States) > 0 {
		return r.States
	}
	if r.State != "" {
		return []string{r.State}
	}
	return nil
}

// validateSyncRequest returns a *domain.ValidationError describing the first
// rule the request breaks.
func validateSyncRequest(req syncRequest) error {
	if err := getValidator().Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return translate(verrs[0])
		}
		return &domain.ValidationError{Message: err.Error()}
	}
	if len(req.codes()) == 0 {
		return &domain.ValidationError{Field: "state", Message: "state or states is required"}
	}
	return nil
}

func translate(fe validator.FieldError) error {
	field := fe.Field()
	if ns := fe.Namespace(); ns != "" {
		if _, rest, ok := strings.Cut(ns, "."); ok {
			field = rest
		}
	}

	var msg string
	switch fe.Tag() {
	case "alpha", "len":
		msg = "must be a two-letter jurisdiction code"
	case "max":
		msg = fmt.Sprintf("must have at most %s entries", fe.Param())
	case "gte":
		msg = fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		msg = fmt.Sprintf("must be at most %s", fe.Param())
	default:
		msg = fmt.Sprintf("failed %s validation", fe.Tag())
	}
	return &domain.ValidationError{Field: field, Message: msg}
}
