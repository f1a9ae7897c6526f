package main

import (
	"flag"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"

	"github.com/SolarShards/XIVAutoCrafter/app/craft"
	"github.com/SolarShards/XIVAutoCrafter/app/tools"
	"github.com/SolarShards/XIVAutoCrafter/internal/catalog"
	"github.com/SolarShards/XIVAutoCrafter/internal/constants"
	"github.com/SolarShards/XIVAutoCrafter/internal/engine/window"
)

func main() {
	lang := flag.String("lang", constants.DefaultLanguage, "game client language (en, fr, de, ja)")
	flag.Parse()

	store := catalog.NewStore()
	if err := catalog.Load(constants.SaveFile, store); err != nil {
		fmt.Printf("catalog load: %v\n", err)
	}

	handle := window.New(constants.GameWindowTitle)

	myApp := app.New()
	myWindow := myApp.NewWindow("XIV Auto Crafter")
	myWindow.Resize(fyne.NewSize(500, 600))

	tabs := container.NewAppTabs(
		container.NewTabItem("Craft", craft.NewCraftPanel(store, handle, *lang)),
		container.NewTabItem("Templates", tools.NewTemplatePanel(myWindow, handle)),
	)
	tabs.SetTabLocation(container.TabLocationTop)

	myWindow.SetContent(tabs)
	myWindow.SetOnClosed(func() {
		if err := catalog.Save(constants.SaveFile, store); err != nil {
			fmt.Printf("catalog save: %v\n", err)
		}
	})
	myWindow.ShowAndRun()
}
