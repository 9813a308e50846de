// Package resolver computes the effective value of every schema symbol for
// one build target.
//
// A symbol is resolved when it is visible (it has a prompt and its prompt
// condition holds) and its dependency condition holds. Its value is the
// override for the target when there is one, otherwise the first default
// whose guard holds. Either way the text is coerced to the declared type;
// a failed coercion omits the symbol and is reported as a warning.
//
// Resolution is lazy: a condition that mentions a symbol not yet resolved
// resolves it on the spot, so declaration order does not matter. A
// reference back into a symbol still being resolved is a dependency cycle
// and reads as unset.
package resolver
