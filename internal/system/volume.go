// Package system wraps the platform volume control side effect.
package system

import (
	"fmt"
	"os/exec"

	"github.com/normanking/pia/internal/apperr"
	"github.com/normanking/pia/internal/speech"
)

// Runner executes an external command. Injectable for tests.
type Runner interface {
	Run(name string, args ...string) error
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// VolumeController sets the system audio volume through termux-volume on
// Termux and amixer elsewhere.
type VolumeController struct {
	termux bool
	runner Runner
}

// NewVolumeController creates the platform volume controller.
func NewVolumeController() *VolumeController {
	return &VolumeController{termux: speech.OnTermux(), runner: ExecRunner{}}
}

// NewVolumeControllerWithRunner is NewVolumeController with an injected runner.
func NewVolumeControllerWithRunner(termux bool, runner Runner) *VolumeController {
	return &VolumeController{termux: termux, runner: runner}
}

// Set sets the volume to level percent. Levels outside 0..100 are rejected
// before any platform call is made.
func (c *VolumeController) Set(level int) error {
	if level < 0 || level > 100 {
		return apperr.New(apperr.KindInvalidLevel, "Invalid volume level (0-100 or 'mute')")
	}
	var err error
	if c.termux {
		err = c.runner.Run("termux-volume", "music", fmt.Sprintf("%d", level))
	} else {
		err = c.runner.Run("amixer", "set", "Master", fmt.Sprintf("%d%%", level))
	}
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "Failed to set volume", err)
	}
	return nil
}

// Mute silences the system audio.
func (c *VolumeController) Mute() error {
	var err error
	if c.termux {
		err = c.runner.Run("termux-volume", "music", "0")
	} else {
		err = c.runner.Run("amixer", "set", "Master", "mute")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "Failed to mute audio", err)
	}
	return nil
}
