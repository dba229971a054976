// Package value provides the tagged variant exchanged with the remote
// renderer.
//
// Attributes and variables carry a Value: Null, Bool, Number, String,
// Resource or Array. Inbound values are loosely typed (a checkbox may arrive
// as "true", 1 or true) so components convert them with the fallible As*
// methods and never with type assertions:
//
//	n, err := v.AsInt()
//	if err != nil {
//	    // reject this field only
//	}
//
// Null is the unset sentinel. Paint targets omit attributes holding Null, so
// the remote side falls back to its default.
package value
