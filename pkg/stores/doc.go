// Package stores persists engine run history: plan, apply, and audit runs,
// the operations they produced, and the drift items audits found.
package stores
