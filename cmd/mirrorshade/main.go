// Command mirrorshade renders a box on a ground plane lit by four shadowed
// spot lights, with a planar reflection composited over the frame.
package main

import (
	"flag"
	"math"

	"MirrorShade/internal/behaviour"
	"MirrorShade/internal/engine"
	"MirrorShade/internal/gldevice"
	"MirrorShade/internal/loader"
	"MirrorShade/internal/logger"
	"MirrorShade/internal/mesh"
	"MirrorShade/internal/renderer"
	"MirrorShade/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to a JSON renderer config; defaults are used when empty")
	preset := flag.String("preset", "default", "Config preset when no file is given: default, high or performance")
	width := flag.Int("width", 800, "Window width")
	height := flag.Int("height", 600, "Window height")
	animate := flag.Bool("animate", true, "Orbit the lights and spin the box")
	model := flag.String("model", "", "OBJ file drawn in place of the box")
	wireframe := flag.Bool("wireframe", true, "Draw the edges of the mesh as thin tubes instead of shading its faces")
	flag.Parse()

	logger.Init()
	defer logger.Sync()

	config, err := loadConfig(*configPath, *preset)
	if err != nil {
		logger.Log.Fatal("Could not load config", zap.Error(err))
	}
	logger.InitDebug(config.Debug)

	boxMesh := mesh.Box()
	if *model != "" {
		boxMesh, err = loader.LoadOBJ(*model, false)
		if err != nil {
			logger.Log.Fatal("Could not load model", zap.Error(err))
		}
		boxMesh.Fit()
	}

	demo := &demo{config: config, animate: *animate, wireframe: *wireframe, mesh: boxMesh, behaviours: behaviour.NewBehaviourManager()}
	e := engine.NewEngine(*width, *height, "MirrorShade")
	e.OnClose = demo.destroy
	if err := e.Run(demo.setup, demo.frame); err != nil {
		logger.Log.Fatal("Render loop stopped", zap.Error(err))
	}
}

func loadConfig(path, preset string) (renderer.Config, error) {
	if path != "" {
		return renderer.LoadConfig(path)
	}
	switch preset {
	case "high":
		return renderer.HighQualityConfig(), nil
	case "performance":
		return renderer.PerformanceConfig(), nil
	default:
		return renderer.DefaultConfig(), nil
	}
}

const wireframeRadius = 0.015

type demo struct {
	config     renderer.Config
	animate    bool
	wireframe  bool
	mesh       *mesh.Data
	behaviours *behaviour.BehaviourManager

	camera   *renderer.Camera
	painter  *gldevice.Painter
	renderer *renderer.SceneRenderer
	scene    *scene.Group
	floor    *scene.Group
	lights   []renderer.Light
}

func (d *demo) setup(e *engine.Engine) error {
	dev := e.Device()
	screen := e.Screen()

	d.camera = renderer.NewPerspectiveCamera(
		mgl32.Vec3{0, 6, 12}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 0},
		screen.Aspect(), mgl32.DegToRad(45), 0.1, 100)
	e.Camera = d.camera

	painter, err := gldevice.NewPainter(dev)
	if err != nil {
		return err
	}
	d.painter = painter

	var subject *scene.Object
	d.scene, d.floor, subject = buildScene(painter, d.mesh, d.config.MirrorHeight, d.wireframe)
	e.OnPick = d.pick

	d.lights = []renderer.Light{renderer.NewAmbientLight(d.config.AmbientIntensity)}
	for _, corner := range [][2]float32{{5, 5}, {-5, 5}, {-5, -5}, {5, -5}} {
		pos := mgl32.Vec3{corner[0], 5, corner[1]}
		spot := renderer.NewSpotLight(pos, pos.Mul(-1))
		if err := spot.EnableShadows(dev, d.config.ShadowResolution, d.config.ShadowFar); err != nil {
			return err
		}
		d.lights = append(d.lights, spot)
		if d.animate {
			d.behaviours.Add(&behaviour.LightOrbit{Light: spot, Speed: math.Pi / 8})
		}
	}
	if d.animate {
		d.behaviours.Add(&behaviour.Spin{Object: subject, Speed: 20})
	}

	d.renderer, err = renderer.NewSceneRenderer(dev, screen, d.config)
	return err
}

// buildScene places the subject one unit above the ground plane, which sits
// at mirrorHeight so the reflection lines up with it.
func buildScene(painter scene.Painter, data *mesh.Data, mirrorHeight float32, wireframe bool) (subjects, floor *scene.Group, subject *scene.Object) {
	if wireframe {
		subject = scene.NewObject(data.Name, mesh.Wireframe(data, wireframeRadius), scene.WireframeMaterial)
	} else {
		subject = scene.NewObject(data.Name, data, scene.Material{
			DiffuseColor:      mgl32.Vec3{0.8, 0.4, 0.2},
			DiffuseIntensity:  1,
			SpecularIntensity: 0.5,
			SpecularPower:     32,
		})
	}
	subject.SetPosition(0, mirrorHeight+1, 0)

	ground := scene.NewObject("ground", mesh.Plane(), scene.GroundMaterial)
	ground.SetPosition(0, mirrorHeight, 0)
	ground.SetScale(100)
	return scene.NewGroup(painter, subject), scene.NewGroup(painter, ground), subject
}

func (d *demo) pick(ray renderer.Ray) {
	objects := append(append([]*scene.Object{}, d.scene.Objects...), d.floor.Objects...)
	object, distance, ok := scene.NewGroup(nil, objects...).Pick(ray)
	if !ok {
		logger.Log.Info("Picked nothing")
		return
	}
	logger.Log.Info("Picked object", zap.String("name", object.Name), zap.Float32("distance", distance))
}

func (d *demo) frame(deltaTime float64) error {
	d.behaviours.UpdateAll(deltaTime)
	return d.renderer.RenderFrame(d.camera, d.scene, d.floor, d.lights)
}

func (d *demo) destroy() {
	for _, light := range d.lights {
		if spot, ok := light.(*renderer.SpotLight); ok {
			spot.Destroy()
		}
	}
	d.renderer.Destroy()
	d.painter.Destroy()
}
