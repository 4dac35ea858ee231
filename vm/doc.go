// Package vm implements the variable and data access layer of the ravel
// interpreter.
//
// This package contains:
//   - The value model: scalars, vectors, lists, functions, promises
//   - Binding stores with shared, versioned shapes
//   - The activation arena and lexical scope chain
//   - Variable read and write sites with adaptive caches
//   - Member (`$`), slot (`@`) and variadic (`..N`) access
//   - Subscript coercion for indexed access
package vm
