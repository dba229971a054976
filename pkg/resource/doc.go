// Package resource serves the binary content widgets refer to: images,
// downloads, style sheets.
//
// A Source opens named content. Sources are registered with a Registry,
// which hands out references of the form "res/<id>/<name>". Widgets carry
// those references as value.Resource values and the renderer fetches them
// from Handler, mounted at "/res/".
//
//	reg := resource.NewRegistry()
//	mem := resource.NewMemorySource()
//	mem.Put("logo.png", "image/png", logo)
//	id := reg.Register(mem)
//	link := widget.NewLink("Logo", "")
//	_ = link.SetResource(resource.Ref(id, "logo.png"))
package resource
