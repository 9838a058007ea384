// Package formats provides parsers for Wavefront model files.
//
// The parsers only tokenize and validate. Triangulation, normal generation
// and material-to-texture mapping happen in the importer.
package formats
