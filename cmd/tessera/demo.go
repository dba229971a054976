package main

import (
	"fmt"

	"github.com/vango-dev/tessera/pkg/component"
	"github.com/vango-dev/tessera/pkg/layout"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/resource"
	"github.com/vango-dev/tessera/pkg/value"
	"github.com/vango-dev/tessera/pkg/widget"
	"github.com/vango-dev/tessera/pkg/window"
)

// demoApp fills every new window with a small settings form next to a
// live preview.
func demoApp(w *window.Window) {
	w.SetTitle("Tessera demo")

	volume := widget.NewSlider("Volume", 0, 100)
	volume.SetValue(30)
	theme := widget.NewSelect("Theme",
		widget.Option{Key: "light", Caption: "Light"},
		widget.Option{Key: "dark", Caption: "Dark"},
		widget.Option{Key: "contrast", Caption: "High contrast"},
	)
	theme.SetSelected("light")
	name := widget.NewTextField("Name")
	name.SetMaxLength(40)
	name.SetPrompt("Your name")
	muted := widget.NewCheckBox("Muted")

	preview := widget.NewLabel("")
	status := widget.NewLabel("")
	refresh := func() {
		who := name.Value()
		if who == "" {
			who = "stranger"
		}
		preview.SetContent(fmt.Sprintf("Hello, %s. Theme: %s.", who, theme.Selected()))
		if muted.Checked() {
			status.SetContent("Volume: muted")
		} else {
			status.SetContent(fmt.Sprintf("Volume: %g", volume.Value()))
		}
	}
	refresh()
	for _, c := range []component.Component{volume, theme, name, muted} {
		component.OnValueChange(c, func(component.Component, value.Value) { refresh() })
	}

	reset := widget.NewButton("Reset", func(*widget.Button) {
		volume.SetValue(30)
		theme.SetSelected("light")
		name.SetValue("")
		muted.SetChecked(false)
	})

	readme := widget.NewLink("Read me", "")
	readme.SetResource(resource.Ref(demoSource, "readme.txt"))

	form := layout.NewVerticalLayout(volume, muted, theme, name, reset)
	form.SetSpacing(true)
	form.SetMargin(true)

	side := layout.NewVerticalLayout(preview, status, readme)
	side.SetComponentAlignment(readme, paint.AlignBottomRight)

	split := layout.NewHorizontalSplitPanel()
	split.SetPosition(paint.Percent(40))
	split.SetFirst(form)
	split.SetSecond(side)
	w.AddComponent(split)
}
