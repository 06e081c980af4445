package stripemodel

import (
	"encoding/json"
	"time"
)

// unixTime converts a Stripe epoch-seconds value to UTC time.
func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func optionalTime(sec *int64) *time.Time {
	if sec == nil {
		return nil
	}
	t := unixTime(*sec)
	return &t
}

// decode unmarshals raw into dst, converting type mismatches into SchemaError.
func decode(entity string, raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			return schemaErr(entity, typeErr.Field, "unexpected type "+typeErr.Value)
		}
		return schemaErr(entity, "", err.Error())
	}
	return nil
}

// idOrObject accepts Stripe fields that are either a bare id string or an
// expanded object carrying an id, depending on the event's expansion level.
type idOrObject struct {
	ID string
}

func (o *idOrObject) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		o.ID = s
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	o.ID = obj.ID
	return nil
}
