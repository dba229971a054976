// Package vtest provides testing helpers for Tessera windows.
//
// A TestSession drives a window the way a connected client would: every
// paint and every variable batch goes through a wire codec, and the
// session keeps a mirror of what the client has seen so that references
// to unknown components fail the test.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    s := vtest.NewTestSession(func(w *window.Window) {
//	        w.AddComponent(widget.NewSlider("Volume", 0, 10))
//	    })
//	    doc := s.Paint(t)
//	    slider := vtest.FindTag(doc, "slider")
//
//	    s.Send(t, vtest.Set(slider.ID, "value", value.Int(4)))
//	    vtest.ExpectVar(t, s.Paint(t), slider.ID, "value", value.Float(4))
//	}
//
// # Reconnects
//
// SimulateReconnect drops the client mirror and asks the window for a
// full repaint, as a client does after losing its state.
//
// # Assertions
//
//	vtest.ExpectPainted(t, doc, id)
//	vtest.ExpectNotPainted(t, doc, id)
//	vtest.ExpectCached(t, doc, id)
//	vtest.ExpectAttr(t, doc, id, "content", value.String("Hi"))
package vtest
