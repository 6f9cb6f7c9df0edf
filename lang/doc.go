// Package lang implements the moustache template language.
//
// A template is text containing three kinds of region:
//
//	{{ expression }}   replaced by its value
//	{% statement %}    evaluated for its effect
//	{# comment #}      removed
//
// # Resolution
//
// A [Document] is split into [Part] values by [Document.Segment]. One pass
// of [Engine.Resolve] replaces every expression with generated text and
// every statement with the parts it produces, then rewrites the source from
// the result. [Engine.Render] repeats passes until one makes no
// replacement, so text generated by a pass may itself contain regions that
// are resolved by the next. Variables and blocks live in one
// [Environment] for the whole render; there is no scoping.
//
// # Expressions
//
// An expression concatenates quoted text and variables with '+':
//
//	{{ greeting + ", " + name }}
//
// A variable whose name starts with '$' names the variable to read: with
// $k set to "real", {{ $k }} is the value of real.
//
// # Statements
//
//	set key = term ('+' term)* [! unset | ! setted]
//	if a == "x" && (b != c || d == e) ... endif
//	for item in list [! separator] ... endfor
//	block name ... endblock
//	call name
//	include path
//	find (files|directories|all) in pattern to key [! separator]
//	raw ... endraw
//	execute key = module.function(args) | module.function(args)
//
// Conditions fold strictly left to right without precedence between && and
// ||. A for loop emits a set statement before each copy of its body, so the
// loop variable is bound in the following pass. The text enclosed by raw is
// never resolved. See package ext for the functions available to execute.
package lang
