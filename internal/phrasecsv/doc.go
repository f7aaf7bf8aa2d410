// Package phrasecsv reads and writes the CSV files exchanged between the
// aligner, the dictionary store, and spreadsheet tools.
//
// Two pair layouts are written: the dictionary layout, which already carries
// the columns the importer expects along with a review marker for unmatched
// captions, and the bare pairs layout with only text and timings. Dictionary
// CSVs are read back as typed rows so one bad line never aborts an import.
// Files meant for spreadsheets are written UTF-8 with a byte order mark.
package phrasecsv
