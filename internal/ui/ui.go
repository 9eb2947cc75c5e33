package ui

import (
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/nevisdale/nestic/internal/nes"
	"github.com/nevisdale/nestic/internal/ui/screenshot"
)

// Tab - show debug info
// P - pause
// R - one instruction while paused
// C - next palette in the debug panel
// F12 - save a screenshot

const (
	defaultScale = 2

	debugPanelWidth = 286
	patternSize     = 128
	paletteCount    = 8
	disasmLines     = 7
)

var buttons = map[ebiten.Key]nes.Button{
	ebiten.KeyX:          nes.ButtonA,
	ebiten.KeyZ:          nes.ButtonB,
	ebiten.KeyShiftRight: nes.ButtonSelect,
	ebiten.KeyEnter:      nes.ButtonStart,
	ebiten.KeyArrowUp:    nes.ButtonUp,
	ebiten.KeyArrowDown:  nes.ButtonDown,
	ebiten.KeyArrowLeft:  nes.ButtonLeft,
	ebiten.KeyArrowRight: nes.ButtonRight,
}

type UI struct {
	bus    *nes.Bus
	disasm map[uint16]string

	scale         int
	showDebugInfo bool
	breakpoints   *nes.Breakpoints
	paused        bool
	palette       uint8
}

func New(bus *nes.Bus, options ...func(*UI) error) (*UI, error) {
	ui := &UI{
		bus:   bus,
		scale: defaultScale,
	}
	for i, option := range options {
		if err := option(ui); err != nil {
			return nil, fmt.Errorf("failed to set option index %d: %w", i, err)
		}
	}
	ui.disasm = bus.Disassemble()
	return ui, nil
}

func WithScale(scale int) func(*UI) error {
	return func(ui *UI) error {
		if scale < 1 {
			return fmt.Errorf("scale must be positive, got %d", scale)
		}
		ui.scale = scale
		return nil
	}
}

func WithDebugPanel(show bool) func(*UI) error {
	return func(ui *UI) error {
		ui.showDebugInfo = show
		return nil
	}
}

// WithBreakpoints pauses the emulation whenever one of bp is reached.
// bp must be attached to the bus as an observer.
func WithBreakpoints(bp *nes.Breakpoints) func(*UI) error {
	return func(ui *UI) error {
		ui.breakpoints = bp
		return nil
	}
}

func (ui *UI) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		ui.showDebugInfo = !ui.showDebugInfo
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		ui.palette = (ui.palette + 1) % paletteCount
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		path := fmt.Sprintf("nestic-%d.png", ui.bus.PPUState().Frame)
		if err := screenshot.Save(path, ui.bus.Screen(), float64(ui.scale)); err != nil {
			log.Printf("screenshot: %v", err)
		}
	}

	pad := ui.bus.Controller(0)
	for key, button := range buttons {
		pad.SetButton(button, ebiten.IsKeyPressed(key))
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		ui.paused = !ui.paused
	}

	if ui.paused {
		if inpututil.IsKeyJustPressed(ebiten.KeyR) {
			ui.bus.Step()
		}
		return nil
	}

	if !ui.bus.StepFrameUntil(ui.breakpointHit) {
		ui.paused = true
	}
	return nil
}

func (ui *UI) breakpointHit() bool {
	if ui.breakpoints == nil {
		return false
	}
	at, hit := ui.breakpoints.Hit()
	if hit {
		log.Printf("breakpoint at $%04X", at)
	}
	return hit
}

func (ui *UI) Draw(screen *ebiten.Image) {
	img := ebiten.NewImageFromImage(ui.bus.Screen())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(ui.scale), float64(ui.scale))
	screen.DrawImage(img, op)

	if ui.showDebugInfo {
		ui.drawDebugInfo(screen)
	}
}

func (ui *UI) drawDebugInfo(screen *ebiten.Image) {
	info := ui.bus.DebugInfo()
	var infoStr strings.Builder
	fmt.Fprintf(&infoStr, " FPS: %0.0f\n", ebiten.ActualFPS())
	fmt.Fprintf(&infoStr, " PALETTE: %d\n", ui.palette)
	fmt.Fprintf(&infoStr, " STATUS: %s\n", info.StatusString())
	fmt.Fprintf(&infoStr, " PC: %04X CYC: %d\n", info.PC, info.Cycles)
	fmt.Fprintf(&infoStr, " A: $%02X [%03d]", info.A, info.A)
	fmt.Fprintf(&infoStr, " X: $%02X [%03d]", info.X, info.X)
	fmt.Fprintf(&infoStr, " Y: $%02X [%03d]\n", info.Y, info.Y)
	fmt.Fprintf(&infoStr, " SP: $%02X\n", info.SP)
	fmt.Fprintf(&infoStr, " %s\n", ui.bus.PPUState())
	if ui.paused {
		infoStr.WriteString(" PAUSED\n")
	}

	// the map only holds instruction starts, walk around the gaps
	pc := int(info.PC)
	for i := max(0, pc-disasmLines*3); i < pc; i++ {
		if line, ok := ui.disasm[uint16(i)]; ok {
			infoStr.WriteString(" " + line + "\n")
		}
	}
	infoStr.WriteString("*" + ui.disasm[info.PC] + "\n")
	for i, shown := pc+1, 0; i <= 0xFFFF && shown < disasmLines; i++ {
		if line, ok := ui.disasm[uint16(i)]; ok {
			infoStr.WriteString(" " + line + "\n")
			shown++
		}
	}

	width, height := ui.gameSize()
	offsetX := float32(width)
	vector.DrawFilledRect(screen, offsetX, 0, debugPanelWidth, float32(height), color.RGBA{50, 50, 50, 255}, false)
	ebitenutil.DebugPrintAt(screen, infoStr.String(), int(offsetX), 0)

	for i := 0; i < paletteCount; i++ {
		paletteImg := ebiten.NewImage(4, 1)
		for j := 0; j < 4; j++ {
			paletteImg.Set(j, 0, ui.bus.PaletteColor(uint8(i), uint8(j)))
		}

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(4, 4)
		op.GeoM.Translate(float64(offsetX)+10+float64(i*35), float64(height-patternSize-20))
		screen.DrawImage(paletteImg, op)
	}

	for i := 0; i < 2; i++ {
		tilesImg := ebiten.NewImageFromImage(ui.bus.PatternTable(ui.palette, uint8(i)))
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(offsetX)+10+(float64(i)*(patternSize+5)), float64(height-patternSize-10))
		screen.DrawImage(tilesImg, op)
	}
}

func (ui *UI) gameSize() (int, int) {
	return nes.ScreenWidth * ui.scale, nes.ScreenHeight * ui.scale
}

func (ui *UI) Layout(_, _ int) (int, int) {
	width, height := ui.gameSize()
	if ui.showDebugInfo {
		width += debugPanelWidth
	}
	return width, height
}

func RunUI(ui *UI) error {
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	width, height := ui.gameSize()
	if ui.showDebugInfo {
		width += debugPanelWidth
	}
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("nestic")
	ebiten.SetTPS(60)
	return ebiten.RunGame(ui)
}
