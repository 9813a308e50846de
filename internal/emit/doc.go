// Package emit renders a resolved mapping into the two artifacts the
// native build consumes: a constants file holding every integer symbol and
// a list of feature flags.
package emit
