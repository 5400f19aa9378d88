package clients

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/veeragonivk/NTCT-gtm-web-app/internal/models"
)

// normalize converts an HTTP response into the canonical backend result:
// a field mapping when the backend declared JSON, the trimmed body as text
// otherwise. A backend that declares JSON but sends garbage is an error
// for the caller to word; a non-2xx status likewise.
func (d *Dispatcher) normalize(resp *http.Response) (*models.BackendResult, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "application/json") {
		return models.TextResult(strings.TrimSpace(string(body))), nil
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("malformed JSON from backend: %w", err)
	}

	// Backends that wrap a free-text answer in {"text": ...} are treated
	// as the opaque text form, matching the formatter's contract.
	if text, ok := fields["text"].(string); ok {
		return models.TextResult(strings.TrimSpace(text)), nil
	}

	return models.FieldsResult(fields), nil
}
