// Package expr parses and evaluates Kconfig-style condition expressions.
//
// Conditions appear in three places of a schema: a symbol's dependency
// (depends_on), its prompt visibility (visible_if), and the guard of each
// default (when). Default values are expressions too, evaluated as text.
//
// Expressions form a DAG: a Pool interns every node by structure, so the
// same sub-condition shared by many symbols is one node. An Evaluator
// memoizes node results per resolution pass.
package expr
