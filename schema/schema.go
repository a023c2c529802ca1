package schema

import "encoding/json"

// Schema is message schema interface
type Schema interface {
	// Attachement() returns schema attchement
	Attachement() *Attachement
}

type SchemaPointer interface {
	Schema
	SetAttachement(*Attachement)
}

// Stringify returns the text presentation of a schema.
// String schemas are returned as is, everything else is json encoded
func Stringify(s Schema) string {
	switch v := s.(type) {
	case String:
		return string(v)
	case *String:
		return string(*v)
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

func ToBytes(s Schema) []byte {
	return []byte(Stringify(s))
}
