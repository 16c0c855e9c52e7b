// Package catalog turns the creature data files into records ready for the store.
//
// It holds the three pure stages of an import: the reference indexes
// (class, race, source and trait slugs to ids), the bio table, and the
// row transformer that resolves every creature row against them. Nothing
// in this package talks to a database; the reference rows arrive through
// a bestiary.ReferenceReader and the sprite bytes through an fs.FS.
package catalog
