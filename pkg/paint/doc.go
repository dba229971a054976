// Package paint defines the outbound document and the Target components
// serialize themselves into.
//
// A synchronization pass produces a Document: one Node per repainted
// subtree. Each Node carries a tag, the component identity, attributes
// (server to client only) and variables (values the client may send back),
// followed by child nodes in container order.
//
// Children that the client already knows and that have not changed since
// the last pass are written as reference-only nodes (Cached set, no
// attributes, no children). This keeps a structural rewrite of a container
// proportional to the number of children rather than the size of their
// subtrees.
//
// Attributes holding the unset sentinel (value.Null, a negative Size,
// AlignUnset) are omitted; the remote side treats a missing attribute as
// "use the default".
package paint
