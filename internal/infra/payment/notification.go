// File: internal/infra/payment/notification.go
package payment

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// ExtractNotificationID pulls the provider payment id out of a webhook
// delivery. Mercado Pago sends several shapes depending on the notification
// channel (and the id arrives as a string or a number), so the id is taken
// from the first populated source: body data.id, body id, then the id /
// data_id query parameters (data.id is kept as a legacy query spelling).
func ExtractNotificationID(body []byte, query url.Values) string {
	if len(body) > 0 {
		var payload struct {
			Data struct {
				ID any `json:"id"`
			} `json:"data"`
			ID any `json:"id"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			if id := idString(payload.Data.ID); id != "" {
				return id
			}
			if id := idString(payload.ID); id != "" {
				return id
			}
		}
	}
	if id := query.Get("id"); id != "" {
		return id
	}
	if id := query.Get("data_id"); id != "" {
		return id
	}
	if id := query.Get("data.id"); id != "" {
		return id
	}
	return ""
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatInt(int64(id), 10)
	default:
		return ""
	}
}
