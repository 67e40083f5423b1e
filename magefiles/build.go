//go:build mage

package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"

	"github.com/spaghettifunk/tessera/engine/audio"
)

type Build mg.Namespace

const (
	demoBinary = "bin/tessera"
	clickPath  = "assets/sounds/click.wav"
)

// Builds the demo binary into bin/.
func (Build) Demo() error {
	mg.Deps(Build.Sounds)
	if err := goTidy(); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "-o", demoBinary, "."), withStream())
	return err
}

// Synthesizes the demo sound effects into assets/sounds.
func (Build) Sounds() error {
	if _, err := os.Stat(clickPath); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(clickPath), 0o755); err != nil {
		return err
	}

	const rate = 44100
	samples := make([]audio.AudioSample, rate/20)
	for i := range samples {
		t := float64(i) / rate
		envelope := math.Exp(-t * 60)
		v := int16(envelope * 0.6 * math.MaxInt16 * math.Sin(2*math.Pi*880*t))
		samples[i] = audio.AudioSample{Left: v, Right: v}
	}
	fmt.Printf("Writing %s...\n", clickPath)
	return audio.SaveWav(clickPath, audio.NewClip(samples, rate))
}
