// Package bootstrap hosts the in-process component runtime.
//
// The runtime owns three pieces of process-wide state:
//
//   - bootstrap variables (BRAND_BASE_DIR and friends), set before the
//     component context exists and expanded with ${NAME} syntax;
//   - the component manifest, a CUE document mapping service names to
//     implementation names (embedded default, overridable per install);
//   - the process service factory slot, written once after bootstrap.
//
// Modules register Go factories for the implementations the manifest
// names. Consumers create instances by service name and type-assert the
// result to the capability they need.
//
// # Headless operation
//
// Graphics initialization honours SAL_USE_VCLPLUGIN. The "svp" backend
// renders to memory and needs no display; every other backend needs
// DISPLAY or WAYLAND_DISPLAY. Headless mode forces "svp".
package bootstrap
