// Package getiplayer wraps the get_iplayer command line tool used to
// search the broadcast catalog and download programme audio. All process
// execution flows through an injectable runner so tests never shell out.
package getiplayer
