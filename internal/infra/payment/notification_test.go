// File: internal/infra/payment/notification_test.go
package payment

import (
	"net/url"
	"testing"
)

func TestExtractNotificationID(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		query string
		want  string
	}{
		{"body data.id string", `{"action":"payment.updated","data":{"id":"123456"}}`, "", "123456"},
		{"body data.id number", `{"data":{"id":123456}}`, "", "123456"},
		{"body top-level id", `{"id":98765,"topic":"payment"}`, "", "98765"},
		{"body data.id wins over top-level id", `{"id":1,"data":{"id":"2"}}`, "", "2"},
		{"query id", ``, "topic=payment&id=555", "555"},
		{"query data_id", ``, "type=payment&data_id=777", "777"},
		{"query data_id with empty body", ``, "data_id=42", "42"},
		{"query data.id legacy spelling", ``, "type=payment&data.id=777", "777"},
		{"body wins over query", `{"data":{"id":"111"}}`, "id=222", "111"},
		{"malformed body falls back to query", `{not json`, "id=333", "333"},
		{"nothing anywhere", `{}`, "topic=merchant_order", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tc.query)
			if got := ExtractNotificationID([]byte(tc.body), q); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
