// Package constant provides the shared sentinel errors of the library.
//
// Keep this package free of runtime behavior.
// Callers wrap these values with fmt.Errorf("%w: ...") to attach call-site
// context while keeping errors.Is checks stable.
package constant
