package serializer

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// ContentType returns the media type of an encoded format.
func ContentType(format Format) string {
	switch format {
	case FormatYAML:
		return "application/yaml"
	case FormatTable:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// FormatFromRequest picks the response format from the "format" query
// parameter, then the Accept header. JSON is the default.
func FormatFromRequest(r *http.Request) Format {
	if f := Format(strings.ToLower(r.URL.Query().Get("format"))); !f.IsUnknown() {
		return f
	}
	accept := r.Header.Get("Accept")
	switch {
	case strings.Contains(accept, "yaml"):
		return FormatYAML
	case strings.Contains(accept, "text/plain"):
		return FormatTable
	default:
		return FormatJSON
	}
}

// Respond writes data encoded in format with the given status code.
// The body is encoded before any header is written so an encoding
// failure still produces a clean 500.
func Respond(w http.ResponseWriter, format Format, statusCode int, data any) {
	if format.IsUnknown() {
		format = FormatJSON
	}

	var buf bytes.Buffer
	if err := NewWriter(format, &buf).Serialize(context.Background(), data); err != nil {
		slog.Error("response encoding failed", slog.String("format", string(format)), slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ContentType(format))
	w.WriteHeader(statusCode)
	if _, err := w.Write(buf.Bytes()); err != nil {
		// client went away
		slog.Warn("response write failed", slog.String("error", err.Error()))
	}
}

// RespondJSON writes data as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, statusCode int, data any) {
	Respond(w, FormatJSON, statusCode, data)
}
