// Package tmpl renders the marker templates used for generated scripts.
//
// Three marker kinds are recognized:
//
//	{{NAME}}                          interpolation
//	{{#if_FLAG}} ... {{/if_FLAG}}     conditional, kept when FLAG is truthy
//	{{#each LIST}} ... {{/each}}      iteration, once per element of LIST
//
// Inside an iteration body {{this}} is the current element; when the
// element is a record (map), each of its fields is addressable by name.
//
// Anything between braces that is neither an identifier nor a block marker,
// such as docker's {{.Names}}, is kept verbatim so templates can embed other
// template languages.
//
// Example:
//
//	out, err := tmpl.Render("Name: {{NAME}}{{#if_X}} X-on{{/if_X}}", tmpl.Context{
//	    "NAME": "a",
//	    "X":    true,
//	})
//	// out == "Name: a X-on"
//
// A referenced key that is missing from the context is an error, including a
// missing conditional flag. Rendering either returns the complete output or
// an error, never a partial result.
package tmpl
