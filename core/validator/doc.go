// Package validator checks request structs against `validate` tags using
// go-playground/validator.
//
//	type createRequest struct {
//		Name  string `json:"name" validate:"required,max=120"`
//		Email string `json:"email" validate:"required,email"`
//	}
//
//	if err := validator.Struct(req); err != nil {
//		var verrs validator.ValidationErrors
//		if errors.As(err, &verrs) {
//			// verrs.Fields() maps json field names to messages
//		}
//		return err
//	}
//
// Every failure matches ErrValidation with errors.Is.
package validator
