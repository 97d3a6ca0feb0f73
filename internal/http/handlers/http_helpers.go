package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/inventory-app/internal/models"
)

const maxBodyBytes = 1048576 // one megabyte

var errEncodeJSON = errors.New("failed to encode JSON")

// readJSON tries to read the body of a request and converts it into JSON
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must have only a single json value")
	}

	return nil
}

// writeJSON takes a response status code and arbitrary data and writes a json response to the client
func writeJSON(w http.ResponseWriter, status int, data any, headers ...http.Header) error {
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %w", errEncodeJSON, err)
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("failed to write to response: %w", err)
	}

	return nil
}

// respond writes data as JSON. When data cannot be encoded nothing has been
// sent yet, so the client gets a 500 instead of an empty body.
func respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	err := writeJSON(w, status, data)
	if err == nil {
		return
	}
	logger.ErrorContext(r.Context(), "Failed to write JSON response", "error", err)
	if errors.Is(err, errEncodeJSON) {
		_ = writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to encode response"})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respond(w, r, status, ErrorResponse{Error: message})
}

// writeStoreError answers 500 with the backend's own message.
func writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger.ErrorContext(r.Context(), "Store operation failed", "op", op, "error", err)
	writeError(w, r, http.StatusInternalServerError, err.Error())
}

func productID(r *http.Request) models.ID {
	return models.ID(pathParam(r, "id"))
}

// pathParam returns the decoded path segment. chi hands back the raw
// (still escaped) segment only when the request carries a RawPath.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw
	}
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
