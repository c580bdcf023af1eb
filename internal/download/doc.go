// Package download moves shows from pending to downloaded and verifies
// their audio landed on disk. Shows are claimed through the catalog's
// conditional status update before any external work starts, so the
// status column acts as the lock.
package download
