package relay

import (
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// checkStatus returns nil for 2xx responses. Otherwise it drains the body as
// text, closes it, and reports a *RemoteError.
func checkStatus(resp *http.Response) error {
	if isSuccess(resp.StatusCode) {
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError("reading error response", err)
	}
	return parseRemoteError(resp.StatusCode, body)
}

// parseRemoteError builds a RemoteError from an error body, extracting the
// {"error":{...}} envelope when present
func parseRemoteError(status int, body []byte) *RemoteError {
	remote := &RemoteError{StatusCode: status, Body: string(body)}

	var envelope struct {
		Error *struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Param   any    `json:"param"`
			Code    any    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return remote
	}

	remote.Detail = &ErrorDetail{
		Message: envelope.Error.Message,
		Type:    envelope.Error.Type,
		Param:   scalarString(envelope.Error.Param),
		Code:    scalarString(envelope.Error.Code),
	}
	return remote
}

func scalarString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return fmt.Sprintf("%g", value)
	default:
		return fmt.Sprint(value)
	}
}
