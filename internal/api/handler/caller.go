package handler

import (
	"hackboard/internal/api/middleware"
	"hackboard/internal/common"
	"hackboard/internal/domain/model"
	"net/http"
)

// mustCaller writes a 401 and returns false when the route is missing Authenticator.
func mustCaller(w http.ResponseWriter, r *http.Request) (model.Caller, bool) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return model.Caller{}, false
	}
	return caller, true
}
