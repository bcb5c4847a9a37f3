// Package nand is a NAND-gate digital logic construction and
// simulation kit. Circuits are described once, as Go functions using
// the builder package's operator-lifted V/VVec DSL, then compiled down
// to a flat list of two-input NAND gates, optimized by package
// optimizer, and run by one of two synchronous evaluation models in
// package simulator.
//
// This root package only re-exports the handful of names a typical
// caller needs for a single import; the gate, builder, optimizer, and
// simulator packages remain independently usable and independently
// documented.
package nand
