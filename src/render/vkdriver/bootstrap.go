package vkdriver

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/vulkan-go/vulkan"

	"framechain/src/render"
)

const validationLayer = "VK_LAYER_KHRONOS_validation"

// ErrNoDevice means that no physical device can draw to the surface.
var ErrNoDevice = errors.New("vkdriver: no suitable device")

// Bootstrap describes how to open a device.
type Bootstrap struct {
	AppName string
	// ProcAddr is the loader entry point supplied by the window system.
	// When nil the default loader is used.
	ProcAddr unsafe.Pointer
	// Extensions are the instance extensions the window system needs.
	Extensions []string
	// Validation enables the Khronos validation layer and routes its
	// reports to the render logger.
	Validation bool
	// Surface creates the presentation surface for instance.
	Surface func(instance vulkan.Instance) (vulkan.Surface, error)
}

// Open creates the instance, surface and logical device, and resolves a
// graphics and a present queue family. On failure everything created so far
// is destroyed.
func Open(b Bootstrap) (_ *Device, err error) {
	if b.ProcAddr != nil {
		vulkan.SetGetInstanceProcAddr(b.ProcAddr)
	} else if err := vulkan.SetDefaultGetInstanceProcAddr(); err != nil {
		return nil, fmt.Errorf("load vulkan: %w", err)
	}
	if err := vulkan.Init(); err != nil {
		return nil, fmt.Errorf("init vulkan: %w", err)
	}

	d := newDevice()
	defer func() {
		if err != nil {
			d.Destroy()
		}
	}()
	if err := d.createInstance(b); err != nil {
		return nil, err
	}
	if b.Validation {
		d.createDebugCallback()
	}
	if d.surface, err = b.Surface(d.instance); err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}
	if err := d.pickPhysicalDevice(); err != nil {
		return nil, err
	}
	if err := d.createLogicalDevice(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) createInstance(b Bootstrap) error {
	app := vulkan.ApplicationInfo{
		SType:              vulkan.StructureTypeApplicationInfo,
		PApplicationName:   cstr(b.AppName),
		ApplicationVersion: vulkan.MakeVersion(1, 0, 0),
		PEngineName:        cstr("framechain"),
		EngineVersion:      vulkan.MakeVersion(1, 0, 0),
		ApiVersion:         vulkan.ApiVersion10,
	}
	extensions := cstrs(b.Extensions)
	var layers []string
	if b.Validation {
		extensions = append(extensions, cstr("VK_EXT_debug_report"))
		layers = append(layers, cstr(validationLayer))
	}
	info := vulkan.InstanceCreateInfo{
		SType:                   vulkan.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &app,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}
	var instance vulkan.Instance
	if err := NewError(vulkan.CreateInstance(&info, nil, &instance)); err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	d.instance = instance
	if err := vulkan.InitInstance(instance); err != nil {
		return fmt.Errorf("init instance: %w", err)
	}
	return nil
}

// createDebugCallback is best effort; a missing layer only costs reports.
func (d *Device) createDebugCallback() {
	info := vulkan.DebugReportCallbackCreateInfo{
		SType:       vulkan.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vulkan.DebugReportFlags(vulkan.DebugReportErrorBit | vulkan.DebugReportWarningBit),
		PfnCallback: debugReport,
	}
	var cb vulkan.DebugReportCallback
	if err := NewError(vulkan.CreateDebugReportCallback(d.instance, &info, nil, &cb)); err != nil {
		render.Logger().Warn("validation reports unavailable", "err", err)
		return
	}
	d.debug = cb
}

func debugReport(flags vulkan.DebugReportFlags, _ vulkan.DebugReportObjectType,
	_ uint64, _ uint, code int32, layer string, msg string, _ unsafe.Pointer) vulkan.Bool32 {

	log := render.Logger()
	if flags&vulkan.DebugReportFlags(vulkan.DebugReportErrorBit) != 0 {
		log.Error(msg, "layer", layer, "code", code)
	} else {
		log.Warn(msg, "layer", layer, "code", code)
	}
	return vulkan.Bool32(vulkan.False)
}

func (d *Device) pickPhysicalDevice() error {
	var n uint32
	if err := NewError(vulkan.EnumeratePhysicalDevices(d.instance, &n, nil)); err != nil {
		return fmt.Errorf("enumerate devices: %w", err)
	}
	gpus := make([]vulkan.PhysicalDevice, n)
	if err := NewError(vulkan.EnumeratePhysicalDevices(d.instance, &n, gpus)); err != nil {
		return fmt.Errorf("enumerate devices: %w", err)
	}

	best := -1
	for _, gpu := range gpus {
		families, ok := d.queueFamilies(gpu)
		if !ok || !hasExtension(gpu, vulkan.KhrSwapchainExtensionName) {
			continue
		}
		var props vulkan.PhysicalDeviceProperties
		vulkan.GetPhysicalDeviceProperties(gpu, &props)
		props.Deref()
		score := 1
		if props.DeviceType == vulkan.PhysicalDeviceTypeDiscreteGpu {
			score = 2
		}
		if score > best {
			best = score
			d.gpu = gpu
			d.families = families
			render.Logger().Info("device candidate", "name", vulkan.ToString(props.DeviceName[:]),
				"graphics", families.Graphics, "present", families.Present)
		}
	}
	if best < 0 {
		return ErrNoDevice
	}
	return nil
}

// queueFamilies prefers a single family that can both draw and present.
func (d *Device) queueFamilies(gpu vulkan.PhysicalDevice) (render.QueueFamilies, bool) {
	var n uint32
	vulkan.GetPhysicalDeviceQueueFamilyProperties(gpu, &n, nil)
	props := make([]vulkan.QueueFamilyProperties, n)
	vulkan.GetPhysicalDeviceQueueFamilyProperties(gpu, &n, props)

	graphics, present := -1, -1
	for i, p := range props {
		p.Deref()
		canDraw := p.QueueFlags&vulkan.QueueFlags(vulkan.QueueGraphicsBit) != 0
		var supported vulkan.Bool32
		vulkan.GetPhysicalDeviceSurfaceSupport(gpu, uint32(i), d.surface, &supported)
		canPresent := supported.B()
		if canDraw && canPresent {
			return render.QueueFamilies{Graphics: uint32(i), Present: uint32(i)}, true
		}
		if canDraw && graphics < 0 {
			graphics = i
		}
		if canPresent && present < 0 {
			present = i
		}
	}
	if graphics < 0 || present < 0 {
		return render.QueueFamilies{}, false
	}
	return render.QueueFamilies{Graphics: uint32(graphics), Present: uint32(present)}, true
}

func hasExtension(gpu vulkan.PhysicalDevice, name string) bool {
	var n uint32
	if NewError(vulkan.EnumerateDeviceExtensionProperties(gpu, "", &n, nil)) != nil {
		return false
	}
	props := make([]vulkan.ExtensionProperties, n)
	if NewError(vulkan.EnumerateDeviceExtensionProperties(gpu, "", &n, props)) != nil {
		return false
	}
	want := vulkan.ToString([]byte(cstr(name)))
	for _, p := range props {
		p.Deref()
		if vulkan.ToString(p.ExtensionName[:]) == want {
			return true
		}
	}
	return false
}

func (d *Device) createLogicalDevice() error {
	unique := []uint32{d.families.Graphics}
	if !d.families.Shared() {
		unique = append(unique, d.families.Present)
	}
	queues := make([]vulkan.DeviceQueueCreateInfo, 0, len(unique))
	for _, family := range unique {
		queues = append(queues, vulkan.DeviceQueueCreateInfo{
			SType:            vulkan.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}
	extensions := []string{cstr(vulkan.KhrSwapchainExtensionName)}
	info := vulkan.DeviceCreateInfo{
		SType:                   vulkan.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queues)),
		PQueueCreateInfos:       queues,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		PEnabledFeatures:        []vulkan.PhysicalDeviceFeatures{{}},
	}
	var device vulkan.Device
	if err := NewError(vulkan.CreateDevice(d.gpu, &info, nil, &device)); err != nil {
		return fmt.Errorf("create device: %w", err)
	}
	d.device = device
	return nil
}
