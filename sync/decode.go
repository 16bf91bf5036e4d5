// ABOUTME: Normalizes contact directory payloads into models.Contact
// ABOUTME: Accepts a bare array or an object wrapping the array under "data"
package sync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/torque/models"
)

// wireContact mirrors the directory's contact record. Dolibarr sends some
// fields as numbers or null, so every field decodes through flexString.
type wireContact struct {
	FirstName flexString `json:"firstname"`
	LastName  flexString `json:"lastname"`
	Email     flexString `json:"email"`
	Phone     flexString `json:"phone"`
	PhonePro  flexString `json:"phone_pro"`
	Address   flexString `json:"address"`
	Status    flexString `json:"status"`
	Company   flexString `json:"company"`
	SocName   flexString `json:"socname"`
}

func (w wireContact) toContact() models.Contact {
	status := string(w.Status)
	if strings.TrimSpace(status) == "" {
		status = models.StatusActive
	}

	company := string(w.Company)
	if company == "" {
		company = string(w.SocName)
	}

	return models.Contact{
		FirstName: string(w.FirstName),
		LastName:  string(w.LastName),
		Email:     string(w.Email),
		Phone:     string(w.Phone),
		PhonePro:  string(w.PhonePro),
		Address:   string(w.Address),
		Status:    status,
		Company:   company,
	}
}

// flexString decodes a JSON string, number, or boolean as text. null is empty.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case '{', '[':
		return fmt.Errorf("expected text, got %s", describeJSON(data))
	default:
		*f = flexString(data)
	}
	return nil
}

// decodeContacts turns a 2xx body into contacts. Syntax errors are
// NetworkOrParse failures; valid JSON of the wrong shape is MalformedResponse
// unless lenient, in which case it yields an empty list.
func decodeContacts(body []byte, lenient bool) ([]models.Contact, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		var raw json.RawMessage
		return nil, networkOrParse(json.Unmarshal(trimmed, &raw))
	}

	var items []wireContact
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, networkOrParse(err)
		}
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, networkOrParse(err)
		}

		data, ok := envelope["data"]
		data = bytes.TrimSpace(data)
		switch {
		case !ok:
			return unknownShape("an object without a data field", lenient)
		case len(data) == 0 || bytes.Equal(data, []byte("null")):
			return []models.Contact{}, nil
		case data[0] != '[':
			return unknownShape("an object whose data is "+describeJSON(data), lenient)
		}

		if err := json.Unmarshal(data, &items); err != nil {
			return nil, networkOrParse(err)
		}
	default:
		return unknownShape(describeJSON(trimmed), lenient)
	}

	contacts := make([]models.Contact, 0, len(items))
	for _, item := range items {
		contacts = append(contacts, item.toContact())
	}
	return contacts, nil
}

func unknownShape(shape string, lenient bool) ([]models.Contact, error) {
	if lenient {
		return []models.Contact{}, nil
	}
	return nil, malformed(shape)
}

func describeJSON(data []byte) string {
	if len(data) == 0 {
		return "nothing"
	}
	switch data[0] {
	case '{':
		return "an object"
	case '[':
		return "an array"
	case '"':
		return "a string"
	case 't', 'f':
		return "a boolean"
	case 'n':
		return "null"
	default:
		return "a number"
	}
}
