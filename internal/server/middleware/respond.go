package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iudanet/carelink/pkg/api"
)

// writeDetail отвечает ошибкой в формате {"detail": ...}
func writeDetail(w http.ResponseWriter, detail string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Detail: detail})
}
