package webhook

import "testing"

func TestParseNotification(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Notification
		wantErr bool
	}{
		{
			name: "payment with string id",
			body: `{"type":"payment","action":"payment.updated","data":{"id":"123"}}`,
			want: Notification{Topic: "payment", Action: "payment.updated", ResourceID: "123"},
		},
		{
			name: "payment with numeric id",
			body: `{"type":"payment","data":{"id":987654321012}}`,
			want: Notification{Topic: "payment", ResourceID: "987654321012"},
		},
		{
			name: "merchant order resource url",
			body: `{"resource":"https://api.mercadolibre.com/merchant_orders/4455","topic":"merchant_order"}`,
			want: Notification{Topic: "merchant_order", ResourceID: "4455"},
		},
		{
			name: "merchant order webhook topic",
			body: `{"topic":"topic_merchant_order_wh","id":77,"resource":"77"}`,
			want: Notification{Topic: "merchant_order", ResourceID: "77"},
		},
		{
			name: "feed v1 payment resource",
			body: `{"resource":"123","topic":"payment"}`,
			want: Notification{Topic: "payment", ResourceID: "123"},
		},
		{name: "not json", body: `type=payment`, wantErr: true},
		{name: "no id", body: `{"type":"payment","data":{}}`, wantErr: true},
		{name: "null id", body: `{"type":"payment","data":{"id":null}}`, wantErr: true},
		{name: "no topic", body: `{"data":{"id":"1"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNotification([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNotification() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseNotification() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPeekTopic(t *testing.T) {
	if got := peekTopic([]byte(`{"topic":"merchant_order"}`)); got != TopicMerchantOrder {
		t.Errorf("peekTopic() = %q", got)
	}
	if got := peekTopic([]byte(`garbage`)); got != "" {
		t.Errorf("peekTopic() = %q", got)
	}
}
