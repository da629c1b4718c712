/*
Package dump provides I/O operations for collected states of Soulbound
ledgers.

State collection (including storage) allows to move a ledger between host
storages, to inspect it offline and to reproduce it in tests. Dumps are kept
in the file system using human-readable encoding.
*/
package dump
