// Package calc is the spreadsheet document engine used by the harness.
//
// Storage and formula evaluation are delegated to excelize. This package
// adds the pieces excelize does not model:
//
//   - zero-based (col, row, tab) addressing;
//   - an explicit formula grammar tag, so formula text is parsed the same
//     way regardless of the process locale;
//   - a document shell with model flags and two init paths, InitNew for
//     interactive documents and InitUnitTest for headless tests;
//   - full recalculation with stale-read detection. A formula cell read
//     after any mutation and before CalcAll returns ErrStaleValue.
//
// Module.Init registers the engine in a bootstrap service factory under
// DocumentServiceName.
package calc
