// Package core provides the storage and search engine for dictlite.
//
// It implements a read-mostly dictionary store on top of SQLite: word entries
// with their definitions, pronunciations, etymologies and translations, plus
// a derived FTS5 token index over the word text that is kept transactionally
// consistent with the words table through triggers.
//
// # Key Components
//
//   - DictStore: The main entry point, owning the database handle, schema
//     creation and the search/definition read paths.
//   - Tiered search: exact, prefix, token and typo-tolerant matching, each
//     tier scoring into its own band so one query yields one total order.
//   - Executor helpers: package-level insert/delete functions that accept
//     either *sql.DB or *sql.Tx, used by the offline import pipeline.
//
// The store is safe for concurrent readers. Content is written once by the
// import pipeline and treated as immutable afterwards; the only supported
// update is replacing the whole database file.
package core
