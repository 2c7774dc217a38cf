// Package app wires a window, a device and a renderer into a running scene.
package app

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/svke/mesh"
	"github.com/vkngwrapper/svke/mesh/objfile"
	"github.com/vkngwrapper/svke/model"
	"github.com/vkngwrapper/svke/pipeline"
	"github.com/vkngwrapper/svke/pipeline/pipecache"
	"github.com/vkngwrapper/svke/renderer"
	"github.com/vkngwrapper/svke/scene"
	"github.com/vkngwrapper/svke/swapchain"
	"github.com/vkngwrapper/svke/vulkan"
	"github.com/vkngwrapper/svke/window"
)

var (
	_ renderer.Window = (*window.Window)(nil)
	_ vulkan.Surface  = (*window.Window)(nil)
)

// Radians per second.
const spinRate = 0.6

type Application struct {
	config Config

	window   *window.Window
	device   *vulkan.Device
	renderer *renderer.Renderer
	cache    *pipeline.Cache
	system   *SimpleRenderSystem

	registry *scene.Registry
	camera   *scene.Camera
	models   []*model.Model

	pipelineStale bool
}

// New must be called from the main OS thread.
func New(config Config) (*Application, error) {
	a := &Application{
		config:   config,
		registry: scene.NewRegistry(),
		camera:   scene.NewCamera(),
	}

	err := a.init()
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *Application) init() error {
	var err error
	a.window, err = window.New(a.config.Title, a.config.Width, a.config.Height)
	if err != nil {
		return err
	}

	a.device, err = vulkan.New(a.window, vulkan.Options{
		ApplicationName:  a.config.Title,
		EnableValidation: a.config.EnableValidation,
		Verbose:          a.config.Verbose,
	})
	if err != nil {
		return err
	}

	a.renderer, err = renderer.New(a.window, a.device,
		renderer.WithVerbose(a.config.Verbose),
		renderer.WithRecreateListener(func(*swapchain.Swapchain) {
			a.pipelineStale = true
		}),
	)
	if err != nil {
		return err
	}

	vendorID, deviceID, cacheUUID := a.device.PipelineCacheIdentity()
	a.cache, err = pipeline.OpenCache(a.device.Driver(), a.config.PipelineCache, pipecache.Identity{
		VendorID:  vendorID,
		DeviceID:  deviceID,
		CacheUUID: cacheUUID,
	})
	if err != nil {
		return err
	}

	start := hrtime.Now()
	a.system, err = NewSimpleRenderSystem(a.device, a.cache, a.renderer.SwapchainRenderPass(), a.config.VertexShader, a.config.FragmentShader)
	if err != nil {
		return err
	}
	a.pipelineStale = false
	if a.config.Verbose {
		log.Printf("app: graphics pipeline built in %s", hrtime.Now()-start)
	}

	return a.loadGameObjects()
}

func (a *Application) loadGameObjects() error {
	cube, err := a.upload(mesh.Cube(mgl32.Vec3{}))
	if err != nil {
		return err
	}
	object := a.registry.Create()
	object.Model = cube
	object.Transform.Translation = mgl32.Vec3{0, 0, 2.5}
	object.Transform.Scale = mgl32.Vec3{.5, .5, .5}

	gasket, err := a.upload(&mesh.Builder{Vertices: mesh.Sierpinski(4,
		mgl32.Vec2{-.5, .5}, mgl32.Vec2{.5, .5}, mgl32.Vec2{0, -.5})})
	if err != nil {
		return err
	}
	object = a.registry.Create()
	object.Model = gasket
	object.Transform.Translation = mgl32.Vec3{-1.2, 0, 3}
	object.Transform.Scale = mgl32.Vec3{.8, .8, .8}

	builders, err := objfile.LoadAll(context.Background(), a.config.Meshes)
	if err != nil {
		return err
	}
	for i, builder := range builders {
		m, err := a.upload(builder)
		if err != nil {
			return errors.Wrapf(err, "failed to upload %s", a.config.Meshes[i])
		}
		object = a.registry.Create()
		object.Model = m
		object.Transform.Translation = mgl32.Vec3{1.2 * float32(i+1), 0, 3}
		object.Transform.Scale = mgl32.Vec3{.5, .5, .5}
	}

	return nil
}

func (a *Application) upload(builder *mesh.Builder) (*model.Model, error) {
	m, err := model.New(a.device, builder)
	if err != nil {
		return nil, err
	}
	a.models = append(a.models, m)
	return m, nil
}

// Run draws frames until the window is closed.
func (a *Application) Run() error {
	lastFrame := hrtime.Now()
	lastTitle := lastFrame
	frames := 0

	for !a.window.ShouldClose() {
		a.window.PollEvents()

		now := hrtime.Now()
		a.update(now - lastFrame)
		lastFrame = now

		err := a.drawFrame()
		if errors.Is(err, renderer.ErrWindowClosed) {
			break
		}
		if err != nil {
			return err
		}

		frames++
		if elapsed := now - lastTitle; elapsed >= time.Second {
			a.window.SetTitle(fmt.Sprintf("%s - %.0f fps - %s", a.config.Title,
				float64(frames)/elapsed.Seconds(), a.renderer.Swapchain().PresentMode()))
			lastTitle = now
			frames = 0
		}
	}

	return a.device.DeviceWaitIdle()
}

func (a *Application) update(dt time.Duration) {
	step := float32(dt.Seconds() * spinRate)
	for _, object := range a.registry.Objects() {
		rotation := object.Transform.Rotation
		object.Transform.Rotation = mgl32.Vec3{
			float32(math.Mod(float64(rotation.X()+step/2), 2*math.Pi)),
			float32(math.Mod(float64(rotation.Y()+step), 2*math.Pi)),
			rotation.Z(),
		}
	}
}

func (a *Application) drawFrame() error {
	if a.pipelineStale {
		err := a.system.Rebuild(a.renderer.SwapchainRenderPass())
		if err != nil {
			return err
		}
		a.pipelineStale = false
	}

	err := a.camera.SetPerspectiveProjection(mgl32.DegToRad(50), a.renderer.AspectRatio(), 0.1, 10)
	if err != nil {
		return err
	}

	commandBuffer, err := a.renderer.BeginFrame()
	if err != nil {
		return err
	}
	if !commandBuffer.Initialized() {
		return nil
	}

	err = a.renderer.BeginSwapchainRenderPass(commandBuffer)
	if err != nil {
		return err
	}

	err = a.system.Render(commandBuffer, a.registry.Objects(), a.camera)
	if err != nil {
		return err
	}

	err = a.renderer.EndSwapchainRenderPass(commandBuffer)
	if err != nil {
		return err
	}

	return a.renderer.EndFrame()
}

// Close releases everything New created, in reverse order. It is safe on a
// partially constructed Application.
func (a *Application) Close() {
	if a.device != nil {
		err := a.device.DeviceWaitIdle()
		if err != nil {
			log.Printf("app: %v", err)
		}
	}

	if a.cache != nil {
		err := a.cache.Save()
		if err != nil {
			log.Printf("app: %v", err)
		}
	}

	for _, m := range a.models {
		m.Destroy()
	}
	a.models = nil

	if a.system != nil {
		a.system.Destroy()
	}

	if a.cache != nil {
		a.cache.Destroy()
	}

	if a.renderer != nil {
		err := a.renderer.Close()
		if err != nil {
			log.Printf("app: %v", err)
		}
	}

	if a.device != nil {
		a.device.Destroy()
	}

	if a.window != nil {
		a.window.Destroy()
	}
}
