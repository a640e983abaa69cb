package labs

import (
	"fmt"

	"Winter3D/internal/config"
	"Winter3D/internal/engine"
	"Winter3D/internal/loader"
	"Winter3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	cubeGrid    = 5
	cubeSpacing = 2.5
)

func init() {
	Register("camera", "Free-fly camera with tilt over a wall of cubes", NewCameraLab)
}

// CameraLab draws a wall of cubes coloured by their normals and flies a
// time-scaled camera over it.
type CameraLab struct {
	cfg *config.Config

	Camera  *renderer.Camera
	Objects []*renderer.Object

	program            renderer.Program
	modelLocation      int32
	viewLocation       int32
	projectionLocation int32

	mesh    renderer.Mesh
	cleanup renderer.Unwind
}

func NewCameraLab(cfg *config.Config) engine.Scene {
	return &CameraLab{cfg: cfg}
}

func (l *CameraLab) Setup(ctx *engine.Context) error {
	program, err := ctx.Programs.Load(renderer.NormalsProgram)
	if err != nil {
		return err
	}
	l.useProgram(program)
	ctx.Programs.OnReload(renderer.NormalsProgram, l.useProgram)

	mesh, err := ctx.Device.NewMesh(loader.Cube(1))
	if err != nil {
		return fmt.Errorf("cube mesh: %w", err)
	}
	l.mesh = mesh
	l.cleanup.Release(mesh)

	offset := float32(cubeGrid-1) * cubeSpacing / 2
	for i := 0; i < cubeGrid; i++ {
		for j := 0; j < cubeGrid; j++ {
			x := float32(i)*cubeSpacing - offset
			y := float32(j)*cubeSpacing - offset
			cube := renderer.NewObject(fmt.Sprintf("cube_%d_%d", i, j), mesh, renderer.WhitePlaster).
				SetPosition(x, y, 0)
			if (i+j)%2 == 1 {
				cube.Rotate(float32(15*i), float32(25*j), 0)
			}
			l.Objects = append(l.Objects, cube)
		}
	}

	camCfg := renderer.TimeScaledCameraConfig()
	camCfg.Position = mgl32.Vec3{0, 0, 12}
	camCfg.Aspect = ctx.Aspect()
	l.Camera = renderer.NewCamera(camCfg, ctx.Input)
	return nil
}

func (l *CameraLab) useProgram(program renderer.Program) {
	l.program = program
	l.modelLocation = program.Location("M")
	l.viewLocation = program.Location("V")
	l.projectionLocation = program.Location("P")
}

func (l *CameraLab) Frame(ctx *engine.Context) {
	l.Camera.Update()

	device := ctx.Device
	device.BindRenderTarget(nil)
	device.Viewport(0, 0, ctx.Width, ctx.Height)
	device.Clear(renderer.ClearColor | renderer.ClearDepth)

	device.UseProgram(l.program)
	l.program.SetMat4(l.viewLocation, l.Camera.GetViewMatrix())
	l.program.SetMat4(l.projectionLocation, l.Camera.GetProjectionMatrix())
	for _, object := range l.Objects {
		l.program.SetMat4(l.modelLocation, object.ModelMatrix())
		device.Draw(object.Mesh)
	}
}

func (l *CameraLab) Release() {
	l.cleanup.Unwind()
	l.Objects = nil
}
