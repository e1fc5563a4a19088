package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/storefront"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// NotificationsDrain hands the queued toasts to the UI; ?peek=true leaves them queued.
func NotificationsDrain(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feed := storefront.FromContext(r.Context()).Feed
		peek, err := validators.ParseQueryFlag(r, "peek")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if peek {
			responses.WriteSuccess(w, feed.Pending())
			return
		}
		responses.WriteSuccess(w, feed.Drain())
	}
}
