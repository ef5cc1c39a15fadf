package receiver

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rushmanagement/rushnotify/internal/prefs"
)

// ErrMalformedPayload is returned for push bodies that cannot be displayed.
var ErrMalformedPayload = errors.New("malformed push payload")

// Payload is the validated form of a push message. Only Title and Body are
// required; every other field is optional and ignored if it has the wrong
// type.
type Payload struct {
	Title    string
	Body     string
	Icon     string
	Badge    string
	Tag      string
	URL      string
	Category prefs.Category
	Data     map[string]any // the payload's own "data" object
	Extra    map[string]any // unknown top-level fields, passed through
}

var knownFields = map[string]bool{
	"title": true, "body": true, "icon": true, "badge": true,
	"tag": true, "url": true, "category": true, "data": true,
}

// ParsePayload validates a raw push body.
func ParsePayload(raw []byte) (Payload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if fields == nil {
		return Payload{}, fmt.Errorf("%w: not an object", ErrMalformedPayload)
	}

	var p Payload
	title, ok := stringField(fields, "title")
	if !ok || title == "" {
		return Payload{}, fmt.Errorf("%w: missing title", ErrMalformedPayload)
	}
	body, ok := stringField(fields, "body")
	if !ok {
		return Payload{}, fmt.Errorf("%w: missing body", ErrMalformedPayload)
	}
	p.Title = title
	p.Body = body

	p.Icon, _ = stringField(fields, "icon")
	p.Badge, _ = stringField(fields, "badge")
	p.Tag, _ = stringField(fields, "tag")
	p.URL, _ = stringField(fields, "url")
	if c, ok := stringField(fields, "category"); ok {
		p.Category = prefs.Category(c)
	}

	if raw, ok := fields["data"]; ok {
		var data map[string]any
		if err := json.Unmarshal(raw, &data); err == nil {
			p.Data = data
		}
	}

	for k, v := range fields {
		if knownFields[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[k] = val
	}

	return p, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// notificationData builds the opaque data passed to the display call.
func (p Payload) notificationData() map[string]any {
	if len(p.Extra) == 0 && p.Data == nil && p.URL == "" && p.Tag == "" {
		return nil
	}
	out := make(map[string]any, len(p.Extra)+3)
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.Data != nil {
		out["data"] = p.Data
	}
	if p.URL != "" {
		out["url"] = p.URL
	}
	if p.Tag != "" {
		out["tag"] = p.Tag
	}
	return out
}
