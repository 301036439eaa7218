// Package notice runs the dashboard's environment and configuration sanity checks.
//
// Evaluate folds a fixed, ordered list of independent checks over a read-only
// Context and returns every emitted Notice plus the highest severity seen.
// Checks only run for the dashboard route; any other route yields an empty
// Result. Nothing here blocks or enforces anything: notices are advisory.
//
// The only side effect is the folder-writability probe, which writes and then
// removes a uniquely named file through an afero.Fs.
package notice
