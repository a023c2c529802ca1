package systemprompt

// ContextProvider is an interface that defines the title and info of a context provider
type ContextProvider interface {
	Title() string
	Info() string
}

// ContextProviderFunc adapts a function into a ContextProvider, info is evaluated on every prompt generation
type ContextProviderFunc struct {
	title string
	fn    func() string
}

// NewContextProviderFunc returns a ContextProvider titled title
func NewContextProviderFunc(title string, fn func() string) *ContextProviderFunc {
	return &ContextProviderFunc{
		title: title,
		fn:    fn,
	}
}

func (p *ContextProviderFunc) Title() string {
	return p.title
}

func (p *ContextProviderFunc) Info() string {
	return p.fn()
}
