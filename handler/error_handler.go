package handler

import (
	"fmt"
	"net/http"
	"storefront-api/common"
)

// ErrorHandlingMiddleware adapts an AppError-returning handler to
// http.Handler. A panic in next becomes a generic 500.
func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				common.Internal(fmt.Errorf("panic: %v", rec)).Send(w)
			}
		}()
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}
