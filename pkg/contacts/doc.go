// Package contacts loads campaign recipients from a tabular source. Excel
// workbooks are read through excelize and CSV files through encoding/csv; the
// first row is the header row. Loading never panics and never returns a bare
// error: the outcome is a Result that distinguishes a usable contact list, a
// valid but empty source, and a configuration problem.
package contacts
