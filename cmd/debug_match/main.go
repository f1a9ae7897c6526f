// debug_match scores a saved screenshot against a crafting log template so
// detection thresholds can be tuned offline.
//
// Usage: debug_match <screenshot.png> [template.png]
package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/SolarShards/XIVAutoCrafter/internal/constants"
	"github.com/SolarShards/XIVAutoCrafter/internal/engine/screen"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: debug_match <screenshot.png> [template.png]")
		return
	}

	screenPath := os.Args[1]
	templatePath := filepath.Join(constants.TemplateDir, constants.DefaultLanguage, constants.CraftWindowTemplate)
	if len(os.Args) > 2 {
		templatePath = os.Args[2]
	}

	screenImg, err := loadImage(screenPath)
	if err != nil {
		fmt.Printf("Failed to load screenshot: %v\n", err)
		return
	}
	templateImg, err := loadImage(templatePath)
	if err != nil {
		fmt.Printf("Failed to load template: %v\n", err)
		return
	}

	fmt.Printf("Screen: %dx%d, Template: %dx%d\n",
		screenImg.Bounds().Dx(), screenImg.Bounds().Dy(),
		templateImg.Bounds().Dx(), templateImg.Bounds().Dy())

	searcher := screen.NewSearcher()
	for _, threshold := range []float64{0.9, constants.MatchThreshold, 0.7, 0.6} {
		center, score, found := searcher.FindTemplate(screenImg, templateImg, threshold, constants.QuickRejectTolerance)
		if found {
			fmt.Printf("  threshold %.2f: MATCH at %v (score %.3f)\n", threshold, center, score)
		} else {
			fmt.Printf("  threshold %.2f: no match (best score %.3f)\n", threshold, score)
		}
	}
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}
