package handlers

import (
	"net/http"

	apperrors "github.com/namelens/fredlens/internal/errors"
)

var defaultHTTPErrorResponder = apperrors.RespondWithError

var httpErrorResponder = defaultHTTPErrorResponder

// SetHTTPErrorResponder installs the server's error handler. Nil restores
// the default.
func SetHTTPErrorResponder(responder func(http.ResponseWriter, *http.Request, error)) {
	if responder == nil {
		responder = defaultHTTPErrorResponder
	}
	httpErrorResponder = responder
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	httpErrorResponder(w, r, err)
}
