// Package ext implements the extension functions invoked by execute
// statements.
//
// A statement such as
//
//	{% execute out = text.trim(" a ") | text.uppercase() %}
//
// calls each "module.function" stage in turn. The first stage receives no
// piped value; each later stage receives the [Value] returned by the stage
// before it. The final value is converted to a string with [Cast].
//
// Built-in modules:
//
//   - text: uppercase, lowercase, ascii_uppercase, ascii_lowercase, trim,
//     trim_start, trim_end
//   - macro: convert_to_text, convert_to_symbol
//   - expr: eval (expr-lang expressions over the template variables)
//   - path: prefix, prefix_dirs (PATH-like lists)
//   - yaml: get (YAMLPath queries)
package ext
