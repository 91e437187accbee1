package typemeta

import (
	"encoding/json"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// Raw carries an object of a type the scheme does not know, keeping its type
// descriptor and its canonicalized JSON form. It is the fallback result of
// construction and decoding when unknown types are allowed.
type Raw struct {
	Type `json:"type"`
	Data []byte `json:"-"`
}

func (r *Raw) String() string {
	return string(r.Data)
}

var _ interface {
	json.Marshaler
	json.Unmarshaler
	Typed
} = &Raw{}

func (r *Raw) SetType(v Type) {
	r.Type = v
}

func (r *Raw) GetType() Type {
	return r.Type
}

func (r *Raw) MarshalJSON() ([]byte, error) {
	return r.Data, nil
}

// UnmarshalJSON extracts the type descriptor and stores the document in its
// canonical form so that two Raw objects of the same content compare equal.
func (r *Raw) UnmarshalJSON(data []byte) error {
	t := &struct {
		Type Type `json:"type"`
	}{}
	err := json.Unmarshal(data, t)
	if err != nil {
		return fmt.Errorf("could not unmarshal data into raw: %w", err)
	}
	r.Type = t.Type
	r.Data = data

	r.Data, err = jsoncanonicalizer.Transform(r.Data)
	if err != nil {
		return fmt.Errorf("could not canonicalize data: %w", err)
	}

	return nil
}
