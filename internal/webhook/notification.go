package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"path"
	"strings"
)

const (
	TopicPayment       = "payment"
	TopicMerchantOrder = "merchant_order"
)

// Notification 网关通知
type Notification struct {
	Topic      string
	Action     string
	ResourceID string
}

type rawNotification struct {
	Type     string          `json:"type"`
	Topic    string          `json:"topic"`
	Action   string          `json:"action"`
	Resource string          `json:"resource"`
	ID       json.RawMessage `json:"id"`
	Data     struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

var errMalformed = errors.New("malformed notification")

// peekTopic 读取主题，用于签名豁免判断
func peekTopic(body []byte) string {
	var raw rawNotification
	if err := json.Unmarshal(body, &raw); err != nil {
		return ""
	}
	return normalizeTopic(raw.Type, raw.Topic)
}

// ParseNotification 解析通知体
func ParseNotification(body []byte) (Notification, error) {
	var raw rawNotification
	if err := json.Unmarshal(body, &raw); err != nil {
		return Notification{}, errMalformed
	}

	n := Notification{
		Topic:  normalizeTopic(raw.Type, raw.Topic),
		Action: raw.Action,
	}
	switch {
	case len(raw.Data.ID) > 0:
		n.ResourceID = rawID(raw.Data.ID)
	case raw.Resource != "":
		n.ResourceID = resourceID(raw.Resource)
	case len(raw.ID) > 0 && raw.Resource == "":
		n.ResourceID = rawID(raw.ID)
	}

	if n.Topic == "" || n.ResourceID == "" {
		return n, errMalformed
	}
	return n, nil
}

func normalizeTopic(typ, topic string) string {
	t := typ
	if t == "" {
		t = topic
	}
	t = strings.ToLower(strings.TrimSpace(t))
	if strings.Contains(t, "merchant_order") {
		return TopicMerchantOrder
	}
	return t
}

// rawID 兼容数字和字符串形式的 id
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// resourceID resource 可能是完整 URL，取最后一段路径
func resourceID(resource string) string {
	resource = strings.TrimSpace(resource)
	if u, err := url.Parse(resource); err == nil && u.Path != "" {
		resource = u.Path
	}
	id := path.Base(strings.TrimRight(resource, "/"))
	if id == "." || id == "/" {
		return ""
	}
	return id
}
