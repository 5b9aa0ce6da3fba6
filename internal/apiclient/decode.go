package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/address-dashboard/internal/lib/apperr"
)

const maxErrorBody = 4 << 10

// DecodeJSON закрывает тело ответа. Не-2xx превращается в *apperr.RemoteError
// с сообщением сервера, 2xx декодируется в out. Пустое тело или out == nil
// ничего не декодируют.
func DecodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &apperr.RemoteError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return fmt.Errorf("apiclient.DecodeJSON: empty response body")
		}
		return fmt.Errorf("apiclient.DecodeJSON: %w", err)
	}
	return nil
}

// errorMessage достаёт message/error из JSON тела ошибки либо возвращает текст.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}
