package validators

import "errors"

var (
	ErrFirstNameEmpty = errors.New("first name is required")
	ErrLastNameEmpty  = errors.New("last name is required")
	ErrNameTooLong    = errors.New("name is too long")
)

const maxNameSize = 255

func NameValidator(first, last string) error {
	if first == "" {
		return ErrFirstNameEmpty
	}

	if last == "" {
		return ErrLastNameEmpty
	}

	if len(first) > maxNameSize || len(last) > maxNameSize {
		return ErrNameTooLong
	}

	return nil
}
