// Package docgen renders a ReactionDescriptor's Doc field (and a
// JoinDefinition's reaction set as a whole) to HTML, adapting the
// teacher's tools.RenderSpecHTML — which walks a core.Spec's nodes
// and branches, rendering each Doc and ActionSource through
// blackfriday — to this project's ReactionDescriptor/Input shape.
package docgen
