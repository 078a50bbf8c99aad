// Package dataset holds the category/series matrix that charts are drawn
// from, and reads it from JSON, YAML, CSV and XLSX files.
//
// # Model
//
// A [Dataset] has one numeric x position per category ([Dataset.X]),
// optional category labels, and any number of [Series]. Series are
// addressed by a 1-based index: index 0 is reserved for the category axis
// itself, mirroring the column layout of the input files.
//
// Missing values are stored as NaN. They are read from JSON/YAML null and
// from empty CSV/XLSX cells, and written back as null.
//
// # JSON Format
//
//	{
//	  "name": "visitors",
//	  "x": [0, 1, 2],
//	  "labels": ["Mon", "Tue", "Wed"],
//	  "series": [
//	    {"name": "desktop", "color": "#2563eb", "values": [10, 20, null]},
//	    {"name": "mobile", "values": [5, 8, 13]},
//	    {"name": "trend", "values": [7, 14, 9], "ignore": true}
//	  ]
//	}
//
// If "x" is omitted the categories are numbered 0..n-1 from "labels" or
// from the longest series.
//
// # Tabular Formats
//
// CSV and XLSX inputs use the first row as header and the first column as
// the category: numeric cells become x positions, anything else becomes a
// label with the row number as position. Header cells ending in "!" mark
// ignored series (for example "trend!").
package dataset
