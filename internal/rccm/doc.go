// Package rccm owns the core of the RCCM repair pipeline.
//
// Responsibilities: the cloud mask tile value type, the four processing
// stages (load, flag, cross-camera fill, neighbourhood fill), the pipeline
// controller, and the confusion-matrix evaluation harness.
// Key types: Tile, ClassCode, Camera, Counts, Options, Result.
//
// Dependency rule: this package holds no I/O. Readers, the file locator and
// all sinks are consumed through narrow interfaces declared here and
// implemented in sibling packages (parse, locate, report, render, store).
package rccm
