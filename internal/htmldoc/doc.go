// Package htmldoc converts between HTML markup and documents.
//
// Parsing maps the usual rich-text elements onto node and mark types of
// the same conventional names (p to paragraph, ul to bullet_list, strong
// to strong, and so on). Any element with a data-type attribute naming a
// node type, or a data-mark attribute naming a mark type, maps to that
// type, which is also how Render writes types without an HTML equivalent:
//
//	<div data-type="indent"><p>text</p></div>
//
// Parsed content is fitted into the schema. Inline content in block
// context is wrapped in the default textblock, nodes that do not fit are
// wrapped with the shortest chain the schema allows or replaced by their
// children, required content is filled with default nodes, and marks a
// parent does not allow are dropped. The result always passes
// model.Node.Check.
package htmldoc
