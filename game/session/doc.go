// Package session manages game session lifecycle and save slots.
//
// A Manager keeps live sessions in memory and, when configured with a
// SlotPersistence, mirrors each one to durable storage. Two stores are
// provided: FilePersistence (one JSON file per slot) and
// SQLitePersistence (a single database). Corrupt slots are detected on
// load and reported as ErrSaveCorrupt; GetOrCreate recovers from them
// by starting a fresh game in place of the broken save.
package session
