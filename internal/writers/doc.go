// Package writers opens the read-2 output stream.
//
// Design:
//   - Output compression follows the file extension (xopen).
//   - "-" is plain FASTQ on stdout; a reader closing early is not an error.
//   - Records are serialized by the fastq package; this package only owns
//     where the bytes go.
package writers
