// Package app assembles a complete preview: a content binding, a platform
// chosen from the configuration, and the view that keeps them in step.
package app
