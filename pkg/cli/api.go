package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mchmarny/cardiorisk/pkg/assess"
	"github.com/mchmarny/cardiorisk/pkg/input"
	"github.com/mchmarny/cardiorisk/pkg/model"
)

const maxRequestBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func healthAPIHandler(m *model.Model) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"model":  m.Name,
		})
	}
}

func assessAPIHandler(m *model.Model) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "request body must be a JSON object")
			return
		}

		raw, err := rawInputFromJSON(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		a, err := assess.Assess(r.Context(), m, raw)
		if err != nil {
			slog.Error("failed to assess input", "error", err, "request_id", requestID(r.Context()))
			writeError(w, http.StatusInternalServerError, "failed to assess input")
			return
		}

		if !a.Valid() {
			writeJSON(w, http.StatusUnprocessableEntity, a)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// rawInputFromJSON accepts each field as a string or a number. Unknown keys
// are ignored.
func rawInputFromJSON(body map[string]any) (input.RawInput, error) {
	raw := make(input.RawInput, len(input.Fields))
	for _, f := range input.Fields {
		v, ok := body[f]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			raw[f] = val
		case float64:
			raw[f] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("field %s must be a string or a number", f)
		}
	}
	return raw, nil
}

func importanceAPIHandler(m *model.Model) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, model.RankImportance(m.Importance))
	}
}

func metadataAPIHandler(m *model.Model) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, m.Metadata)
	}
}
