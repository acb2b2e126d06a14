package pagination

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"learn2learn/pkg/apperr"
)

// PageSize is the fixed page size for all list endpoints.
const PageSize = 15

// TimeCursor is a keyset cursor over (created_at, id).
type TimeCursor struct {
	CreatedAt time.Time `json:"t"`
	ID        string    `json:"id"`
}

// NameCursor is a keyset cursor over a unique name column.
type NameCursor struct {
	Name string `json:"n"`
}

// EncodeTime encodes a TimeCursor as an opaque page token.
func EncodeTime(c TimeCursor) string {
	return encode(c)
}

// DecodeTime decodes a page token produced by EncodeTime.
func DecodeTime(token string) (TimeCursor, error) {
	var c TimeCursor
	if err := decode(token, &c); err != nil {
		return TimeCursor{}, err
	}
	return c, nil
}

// EncodeName encodes a NameCursor as an opaque page token.
func EncodeName(c NameCursor) string {
	return encode(c)
}

// DecodeName decodes a page token produced by EncodeName.
func DecodeName(token string) (NameCursor, error) {
	var c NameCursor
	if err := decode(token, &c); err != nil {
		return NameCursor{}, err
	}
	return c, nil
}

func encode(v any) string {
	raw, _ := json.Marshal(v)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decode(token string, v any) error {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return apperr.Wrap(apperr.Validation, "invalid page cursor", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid page cursor", err)
	}
	return nil
}
