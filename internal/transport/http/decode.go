package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate parses the JSON body into dst and runs struct validation.
// On failure it writes the 400 response itself and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			respondErrorMessage(w, http.StatusBadRequest, "Request body is empty.")
			return false
		}
		respondErrorMessage(w, http.StatusBadRequest, "Invalid request payload.")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			respondErrorMessage(w, http.StatusBadRequest, "Validation failed on field '"+verrs[0].Field()+"'.")
			return false
		}
		respondErrorMessage(w, http.StatusBadRequest, "Validation failed.")
		return false
	}
	return true
}
