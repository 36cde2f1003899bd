// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/tickecs/ecs"
	"github.com/rs/zerolog"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the backend and its window.
func NewImguiBackend(title string, width, height int) *ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	return &ImguiBackend{EbitenBackend: backend}
}

// Game implements ebiten.Game. Every Update runs one scheduler tick inside an ImGui frame,
// and Draw paints the ImGui overlay on top of whatever DrawWorld renders.
type Game struct {
	Scheduler *ecs.Scheduler
	Backend   *ImguiBackend

	// DeltaTime is passed to every tick. Defaults to 1/TPS.
	DeltaTime float64
	// DrawWorld, if set, draws the game before the overlay.
	DrawWorld func(screen *ebiten.Image)
	Logger    zerolog.Logger
}

func (g *Game) Update() error {
	dt := g.DeltaTime
	if dt == 0 {
		dt = 1.0 / float64(ebiten.TPS())
	}

	g.Backend.BeginFrame()
	report, err := g.Scheduler.Once(dt)
	g.Backend.EndFrame()
	if err != nil {
		return err
	}

	for _, failure := range report.Failures {
		g.Logger.Warn().
			Uint64("tick", report.Tick).
			Str("system", failure.System).
			Err(failure.Err).
			Msg("system failed")
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.DrawWorld != nil {
		g.DrawWorld(screen)
	}
	g.Backend.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.Backend.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
