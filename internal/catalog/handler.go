package catalog

import (
	"net/http"

	"barbershop-backend/internal/transport"
)

// ListHandler serves the fixed service catalog.
func ListHandler(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"services": All()})
}
