// Package pgstore is the PostgreSQL implementation of listing storage.
//
// It stores the same two tables as package store and offers the same
// methods, so either backend can sit behind service.ListingService.
// Concurrent appends to one listing serialize on a row lock taken with
// SELECT ... FOR UPDATE on the listing row, which makes the event guard
// and the seq allocation atomic across connections.
package pgstore
