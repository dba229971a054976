// Package widget provides the stock leaf components.
//
// Widgets that hold a value declare it as a paint variable and accept it
// back through ApplyVariable. Malformed input is rejected with an error
// wrapping component.ErrInvalidValue; out-of-range input is clamped. Every
// change to a held value, from the client or from application code, fires
// component.EventValueChange with the new value.Value as payload.
package widget
