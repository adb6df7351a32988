package capture

import (
	"fmt"

	"gocv.io/x/gocv"
)

// QuitKey closes the preview and stops the controller.
const QuitKey = 'q'

// Preview shows frames in an OpenCV window. Its methods must be called from
// the main OS thread on macOS.
type Preview struct {
	window *gocv.Window
}

// NewPreview opens a preview window.
func NewPreview(title string) *Preview {
	return &Preview{window: gocv.NewWindow(title)}
}

// Show displays frame and polls the keyboard. It reports whether the user
// asked to quit.
func (p *Preview) Show(frame *gocv.Mat) bool {
	if frame != nil && !frame.Empty() {
		p.window.IMShow(*frame)
	}
	key := p.window.WaitKey(1)
	return key == QuitKey || key == 'Q'
}

// Close destroys the window.
func (p *Preview) Close() error {
	if err := p.window.Close(); err != nil {
		return fmt.Errorf("close preview: %w", err)
	}
	return nil
}
