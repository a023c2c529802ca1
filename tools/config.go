package tools

import "context"

// Config shared by all tools
type Config struct {
	// title the default title of the tool
	title string
	// description the default description of the tool
	description string
	startHook   func(context.Context, ITool, any)
	endHook     func(context.Context, ITool, any, any)
	errorHook   func(context.Context, ITool, any, error)
}

func (c *Config) SetTitle(v string) {
	c.title = v
}

func (c Config) Title() string {
	return c.title
}

func (c *Config) SetDescription(v string) {
	c.description = v
}

func (c Config) Description() string {
	return c.description
}

func (c *Config) SetStartHook(fn func(context.Context, ITool, any)) {
	c.startHook = fn
}

func (c *Config) SetEndHook(fn func(context.Context, ITool, any, any)) {
	c.endHook = fn
}

func (c *Config) SetErrorHook(fn func(context.Context, ITool, any, error)) {
	c.errorHook = fn
}

// OnStart fires the start hook
func (c Config) OnStart(ctx context.Context, tool ITool, input any) {
	if c.startHook != nil {
		c.startHook(ctx, tool, input)
	}
}

// OnEnd fires the end hook
func (c Config) OnEnd(ctx context.Context, tool ITool, input any, output any) {
	if c.endHook != nil {
		c.endHook(ctx, tool, input, output)
	}
}

// OnError fires the error hook
func (c Config) OnError(ctx context.Context, tool ITool, input any, err error) {
	if c.errorHook != nil {
		c.errorHook(ctx, tool, input, err)
	}
}
