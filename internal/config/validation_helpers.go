package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

// convertValidationError normalizes validator errors into megatron validation errors.
func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return megaerrors.NewValidationError(field, msg, err)
	}

	return megaerrors.NewValidationError("config", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}

func fieldForSignal(index int, field string) string {
	return fmt.Sprintf("signals[%d].%s", index, field)
}

func asValidation(err error, target **megaerrors.ValidationError) bool {
	return errors.As(err, target)
}
