// Package scene holds the objects a frame draws and the camera it draws them
// with.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/svke/gpu"
)

type ID uint32

// Model is anything that can bind its buffers to a command buffer and draw.
type Model interface {
	Bind(commandBuffer gpu.CommandBuffer) error
	Draw(commandBuffer gpu.CommandBuffer) error
}

type Object struct {
	id ID

	Model       Model
	Color       mgl32.Vec3
	Transform2D Transform2D
	Transform   Transform
}

func (o *Object) ID() ID {
	return o.id
}

// Registry owns every object in the scene and assigns ids in creation order,
// starting at zero.
type Registry struct {
	next    ID
	objects []*Object
	byID    map[ID]*Object
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[ID]*Object)}
}

func (r *Registry) Create() *Object {
	object := &Object{
		id:          r.next,
		Transform2D: Transform2D{Scale: mgl32.Vec2{1, 1}},
		Transform:   Transform{Scale: mgl32.Vec3{1, 1, 1}},
	}
	r.next++
	r.objects = append(r.objects, object)
	r.byID[object.id] = object
	return object
}

func (r *Registry) Get(id ID) (*Object, bool) {
	object, ok := r.byID[id]
	return object, ok
}

// Objects returns the objects in creation order.
func (r *Registry) Objects() []*Object {
	return r.objects
}

func (r *Registry) Len() int {
	return len(r.objects)
}
