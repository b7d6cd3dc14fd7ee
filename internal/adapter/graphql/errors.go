package graphql

import (
	"errors"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
)

const (
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL"
)

// resolverError carries a machine-readable code into the response's error extensions.
type resolverError struct {
	err  error
	code string
}

func (e *resolverError) Error() string {
	if e.code == CodeInternal {
		return "internal error"
	}
	return e.err.Error()
}

func (e *resolverError) Unwrap() error { return e.err }

func (e *resolverError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.code}
	var vErr *domain.ValidationError
	if errors.As(e.err, &vErr) && vErr.Field != "" {
		ext["field"] = vErr.Field
	}
	return ext
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return CodeBadUserInput
	case errors.Is(err, domain.ErrUnauthenticated):
		return CodeUnauthenticated
	case errors.Is(err, domain.ErrNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}

// toGraphQLError classifies err. Internal failures keep their cause out of the response.
func toGraphQLError(err error) error {
	if err == nil {
		return nil
	}
	return &resolverError{err: err, code: errorCode(err)}
}
