// Package output defines the YAML/JSON shapes printed by gosense commands
// and returned by its MCP tools.
//
// # Output Types
//
//   - SuggestionList: import path or identifier suggestions (sdk, local, complete)
//   - EntryList: lookup entries for a file's declarations (lookup)
//   - ImportList: a file's imports and the names they bind (imports)
//   - ContextReport: template contexts at an offset (context)
//   - HistoryList: recorded completion queries (history)
//
// # Format Types
//
// YAML is the default; JSON carries the same structure. Keys are spelled
// out in full and empty fields are omitted.
package output
