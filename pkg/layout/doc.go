// Package layout provides the stock container policies.
//
// Each layout embeds component.ContainerBase and decides what slot metadata
// a child carries:
//
//   - OrderedLayout stacks children vertically or horizontally, with an
//     optional cell alignment per child.
//   - SplitPanel holds at most two children in the "first" and "second"
//     panes, separated by a movable splitter.
//   - AbsoluteLayout places each child at a Position.
//   - CustomLayout puts children into named locations of a template.
//
// Replacing a child keeps its slot:
//
//	split := layout.NewHorizontalSplitPanel()
//	_ = split.SetFirst(menu)
//	_ = split.SetSecond(content)
//	_ = split.ReplaceComponent(menu, tree) // tree is now the first pane
package layout
