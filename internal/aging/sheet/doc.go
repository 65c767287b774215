// Package sheet loads uploaded spreadsheets into datasets.
//
// Supported inputs are .xlsx (excelize), legacy .xls (extrame/xls) and
// .csv. The first row of a sheet is its header.
package sheet
