package render

// Context holds the device and the two queues resolved at startup.
// It is created once and passed to every other component.
type Context struct {
	device   Device
	families QueueFamilies
	graphics Queue
	present  Queue
}

// NewContext resolves the graphics and present queues of dev.
func NewContext(dev Device, families QueueFamilies) *Context {
	return &Context{
		device:   dev,
		families: families,
		graphics: dev.Queue(families.Graphics),
		present:  dev.Queue(families.Present),
	}
}

func (c *Context) Device() Device          { return c.device }
func (c *Context) Families() QueueFamilies { return c.families }
func (c *Context) GraphicsQueue() Queue    { return c.graphics }
func (c *Context) PresentQueue() Queue     { return c.present }

// Destroy releases the device. Nothing created from it may be used after.
func (c *Context) Destroy() {
	c.device.Destroy()
}
