// Package artifact makes sure the model file is present on local disk before
// the classifier loads it. Acquisition is idempotent and does not retry: a
// failed download leaves nothing at the target path and the caller's load
// step is expected to fail.
package artifact
