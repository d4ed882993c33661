// utils/http.go - JSON helpers for the net/http ws server
package utils

import (
	"encoding/json"
	"net/http"
)

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// JSONError sends a JSON error response
func JSONError(w http.ResponseWriter, status int, message string) error {
	return JSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// JSONSuccess sends a JSON success response
func JSONSuccess(w http.ResponseWriter, data interface{}) error {
	response := map[string]interface{}{
		"success": true,
	}

	if dataMap, ok := data.(map[string]interface{}); ok {
		for k, v := range dataMap {
			response[k] = v
		}
	} else {
		response["data"] = data
	}

	return JSON(w, http.StatusOK, response)
}
