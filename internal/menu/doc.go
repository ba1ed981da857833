// Package menu interprets the XML documents served by the tuner's CAM
// interface and passed through by the dispatcher.
//
// Lookups are document-wide by tag name, so an element is found at any depth.
// Optional fields count only when they occur exactly once. Parsing never
// panics on partial data: missing elements surface as distinct errors and
// status strings instead.
package menu
