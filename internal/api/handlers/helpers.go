package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/minimart-labs/minimart-platform/internal/api/middleware"
	"github.com/minimart-labs/minimart-platform/internal/errors"
	"github.com/minimart-labs/minimart-platform/internal/models"
	"github.com/minimart-labs/minimart-platform/internal/utils"
	"github.com/minimart-labs/minimart-platform/internal/utils/response"
)

// requireClaims resolves the authenticated subject or writes a 401.
// Handlers sit behind the auth middleware, so a miss here means the
// route was wired without it.
func requireClaims(w http.ResponseWriter, r *http.Request) (*models.Claims, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		response.Error(w, errors.UnauthorizedError("Authentication required"))
		return nil, false
	}

	return claims, true
}

// decodeAndValidate parses the body into dest and runs struct validation,
// writing the error response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dest any) bool {
	if err := utils.DecodeJSONBody(r, dest); err != nil {
		response.Error(w, errors.BadRequestError(err.Error()))
		return false
	}

	if err := validate.Struct(dest); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			response.ValidationError(w, validationErrs)
		} else {
			response.Error(w, errors.ValidationError("Invalid input data"))
		}
		return false
	}

	return true
}
