package render

import "fmt"

// ImageChain is the set of presentable images, their views and the
// semaphores their presents wait on. It is never modified after BuildChain;
// a different surface size means a new chain.
type ImageChain struct {
	ctx       *Context
	swapchain Swapchain
	images    []Image
	views     []ImageView
	finished  []Semaphore
	format    Format
	extent    Extent
	released  bool
}

// BuildChain allocates a chain of cfg.ImageCount images sized to cfg.Extent,
// plus one view and one render-finished semaphore per image.
func BuildChain(ctx *Context, cfg SurfaceConfig) (_ *ImageChain, err error) {
	dev := ctx.Device()
	c := &ImageChain{
		ctx:    ctx,
		format: cfg.Format.Format,
		extent: cfg.Extent,
	}
	defer func() {
		if err != nil {
			c.Teardown()
		}
	}()

	c.swapchain, err = dev.CreateSwapchain(cfg, ctx.Families())
	if err != nil {
		return nil, fmt.Errorf("create swapchain: %w", err)
	}
	c.images, err = dev.SwapchainImages(c.swapchain)
	if err != nil {
		return nil, fmt.Errorf("get swapchain images: %w", err)
	}
	c.views = make([]ImageView, 0, len(c.images))
	for i, img := range c.images {
		view, err := dev.CreateImageView(img, c.format)
		if err != nil {
			return nil, fmt.Errorf("create image view %d: %w", i, err)
		}
		c.views = append(c.views, view)
	}
	c.finished = make([]Semaphore, 0, len(c.images))
	for i := range c.images {
		sem, err := dev.CreateSemaphore()
		if err != nil {
			return nil, fmt.Errorf("create render-finished semaphore %d: %w", i, err)
		}
		c.finished = append(c.finished, sem)
	}

	Logger().Info("image chain built", "images", len(c.images), "format", c.format, "extent", c.extent)
	return c, nil
}

func (c *ImageChain) Swapchain() Swapchain { return c.swapchain }
func (c *ImageChain) Len() int             { return len(c.images) }
func (c *ImageChain) Image(i uint32) Image { return c.images[i] }
func (c *ImageChain) Views() []ImageView   { return c.views }
func (c *ImageChain) Format() Format       { return c.format }
func (c *ImageChain) Extent() Extent       { return c.extent }

// RenderFinished is the semaphore the submit rendering image i signals and
// its present waits on. It is only signaled again after image i has been
// acquired again, which is when the previous present has consumed it.
func (c *ImageChain) RenderFinished(i uint32) Semaphore { return c.finished[i] }

// Teardown releases the views, the semaphores and the chain. The device must not be using
// any of the images. Further calls have no effect.
func (c *ImageChain) Teardown() {
	if c == nil || c.released {
		return
	}
	c.released = true
	dev := c.ctx.Device()
	for _, v := range c.views {
		dev.DestroyImageView(v)
	}
	c.views = nil
	for _, sem := range c.finished {
		dev.DestroySemaphore(sem)
	}
	c.finished = nil
	c.images = nil
	if c.swapchain != 0 {
		dev.DestroySwapchain(c.swapchain)
		c.swapchain = 0
	}
}
