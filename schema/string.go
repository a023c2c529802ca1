package schema

type String string

func NewString(v string) *String {
	s := String(v)
	return &s
}

func (s String) Attachement() *Attachement {
	return nil
}

func (s String) String() string {
	return string(s)
}
