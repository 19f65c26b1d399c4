// Package extractors provides implementations of the Extractor interface
// for the document formats found in a corpus directory. Each extractor
// knows how to read the pages of files with specific extensions.
//
// Extractors are registered with the Registry at startup.
package extractors
